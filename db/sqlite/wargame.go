package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hspace-portal/models"
)

const challengeViewColumns = `
SELECT c.*,
       (SELECT COUNT(a.id) FROM wargame_attempts a WHERE a.challenge_id = c.id AND a.is_correct = 1) AS solved_count
FROM wargame_challenges c`

func (d *Database) CreateChallenge(ctx context.Context, ch *models.WargameChallenge) error {
	if ch.CreatedAt.IsZero() {
		ch.CreatedAt = time.Now().UTC()
	}
	id, err := d.insert(ctx, `
INSERT INTO wargame_challenges (title, summary, difficulty, category, flag_answer, hint, reward_points,
                                attachment_path, is_community, author_id, author_name, created_at)
VALUES (:title, :summary, :difficulty, :category, :flag_answer, :hint, :reward_points,
        :attachment_path, :is_community, :author_id, :author_name, :created_at);`, ch)
	if err != nil {
		return err
	}
	ch.ID = id
	return nil
}

func (d *Database) GetChallenge(ctx context.Context, id int64) (models.WargameChallenge, error) {
	var ch models.WargameChallenge
	err := d.getOne(ctx, &ch, fmt.Sprintf("WargameChallenge id %d", id),
		`SELECT * FROM wargame_challenges WHERE id = ?`, id)
	return ch, err
}

func (d *Database) ListChallengeTitles(ctx context.Context) ([]string, error) {
	var titles []string
	if err := d.db.SelectContext(ctx, &titles, `SELECT title FROM wargame_challenges`); err != nil {
		return nil, err
	}
	return titles, nil
}

// ListChallenges returns the challenges selected by filter with their solve counts.
func (d *Database) ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]models.ChallengeView, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Difficulty != "" && filter.Difficulty != "all" {
		where = append(where, `c.difficulty = ?`)
		args = append(args, filter.Difficulty)
	}
	if filter.Category != "" && filter.Category != "all" {
		where = append(where, `c.category = ?`)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		where = append(where, `(LOWER(c.title) LIKE ? OR LOWER(c.summary) LIKE ?)`)
		args = append(args, like, like)
	}

	query := challengeViewColumns
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	switch filter.Sort {
	case models.SortReward:
		query += ` ORDER BY c.reward_points DESC, c.id`
	case models.SortOldest:
		query += ` ORDER BY c.created_at ASC, c.id ASC`
	case models.SortPopular:
		query += ` ORDER BY solved_count DESC, c.created_at DESC, c.id DESC`
	default:
		query += ` ORDER BY c.created_at DESC, c.id DESC`
	}

	var challenges []models.ChallengeView
	if err := d.db.SelectContext(ctx, &challenges, query, args...); err != nil {
		return nil, err
	}
	return challenges, nil
}

// RecentCommunityChallenges returns the newest community-published challenges.
func (d *Database) RecentCommunityChallenges(ctx context.Context, limit int) ([]models.ChallengeView, error) {
	var challenges []models.ChallengeView
	err := d.db.SelectContext(ctx, &challenges,
		challengeViewColumns+` WHERE c.is_community = 1 ORDER BY c.created_at DESC, c.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return challenges, nil
}

// ListCategories returns the distinct non-empty categories in order.
func (d *Database) ListCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := d.db.SelectContext(ctx, &categories,
		`SELECT DISTINCT category FROM wargame_challenges WHERE category != '' ORDER BY category ASC`)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (d *Database) WargameStats(ctx context.Context) (models.WargameStats, error) {
	var stats models.WargameStats
	err := d.db.GetContext(ctx, &stats, `
SELECT (SELECT COUNT(id) FROM wargame_challenges)                      AS total_challenges,
       (SELECT COUNT(id) FROM wargame_challenges WHERE is_community = 1) AS community_count,
       (SELECT COUNT(id) FROM wargame_attempts WHERE is_correct = 1)     AS solved_total`)
	return stats, err
}

// SolverLeaderboard ranks users by correct attempts; the earlier first solve wins a tie.
func (d *Database) SolverLeaderboard(ctx context.Context, limit int) ([]models.SolverRank, error) {
	var ranks []models.SolverRank
	err := d.db.SelectContext(ctx, &ranks, `
SELECT u.username AS username, COUNT(a.id) AS solved
FROM wargame_attempts a
         JOIN users u ON u.id = a.user_id
WHERE a.is_correct = 1
GROUP BY u.id, u.username
ORDER BY COUNT(a.id) DESC, MIN(a.created_at) ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return ranks, nil
}

func (d *Database) CreateAttempt(ctx context.Context, attempt *models.WargameAttempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	id, err := d.insert(ctx, `
INSERT INTO wargame_attempts (challenge_id, user_id, submitted_flag, is_correct, created_at)
VALUES (:challenge_id, :user_id, :submitted_flag, :is_correct, :created_at);`, attempt)
	if err != nil {
		return err
	}
	attempt.ID = id
	return nil
}

// UserWargameStats summarizes one user's attempts. Accuracy is a percentage
// rounded to one decimal.
func (d *Database) UserWargameStats(ctx context.Context, userID int64) (models.UserWargameStats, error) {
	var totals struct {
		Attempts int `db:"attempts"`
		Solves   int `db:"solves"`
		Points   int `db:"points"`
	}
	err := d.db.GetContext(ctx, &totals, `
SELECT COUNT(a.id)                                                          AS attempts,
       COALESCE(SUM(CASE WHEN a.is_correct = 1 THEN 1 ELSE 0 END), 0)             AS solves,
       COALESCE(SUM(CASE WHEN a.is_correct = 1 THEN c.reward_points ELSE 0 END), 0) AS points
FROM wargame_attempts a
         JOIN wargame_challenges c ON c.id = a.challenge_id
WHERE a.user_id = ?`, userID)
	if err != nil {
		return models.UserWargameStats{}, err
	}

	var favorite []string
	err = d.db.SelectContext(ctx, &favorite, `
SELECT c.category
FROM wargame_attempts a
         JOIN wargame_challenges c ON c.id = a.challenge_id
WHERE a.user_id = ? AND a.is_correct = 1
GROUP BY c.category
ORDER BY COUNT(c.id) DESC, c.category ASC
LIMIT 1`, userID)
	if err != nil {
		return models.UserWargameStats{}, err
	}

	stats := models.UserWargameStats{
		TotalAttempts: totals.Attempts,
		TotalSolves:   totals.Solves,
		RewardPoints:  totals.Points,
	}
	if totals.Attempts > 0 {
		accuracy := float64(totals.Solves) / float64(totals.Attempts) * 100
		stats.Accuracy = float64(int(accuracy*10+0.5)) / 10
	}
	if len(favorite) > 0 {
		stats.FavoriteCategory = favorite[0]
	}
	return stats, nil
}

// RecentAttempts returns the user's latest attempts with their challenge.
func (d *Database) RecentAttempts(ctx context.Context, userID int64, limit int) ([]models.AttemptView, error) {
	var attempts []models.AttemptView
	err := d.db.SelectContext(ctx, &attempts, `
SELECT c.title AS challenge, c.difficulty AS difficulty, a.is_correct AS is_correct,
       a.submitted_flag AS submitted_flag, a.created_at AS created_at
FROM wargame_attempts a
         JOIN wargame_challenges c ON c.id = a.challenge_id
WHERE a.user_id = ?
ORDER BY a.created_at DESC, a.id DESC
LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"hspace-portal/models"
)

func (d *Database) CreateTeamPost(ctx context.Context, post *models.TeamPost) error {
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}
	if post.Phase == "" {
		post.Phase = models.PhaseRecruiting
	}
	id, err := d.insert(ctx, `
INSERT INTO team_posts (competition_id, custom_competition, event_start, event_end, title, owner,
                        summary, requirements, tags, team_size, level, use_random_matching,
                        phase, cover_image, created_at)
VALUES (:competition_id, :custom_competition, :event_start, :event_end, :title, :owner,
        :summary, :requirements, :tags, :team_size, :level, :use_random_matching,
        :phase, :cover_image, :created_at);`, post)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

// GetTeamPost returns a post with its competition and applications loaded.
func (d *Database) GetTeamPost(ctx context.Context, id int64) (models.TeamPost, error) {
	var post models.TeamPost
	err := d.getOne(ctx, &post, fmt.Sprintf("TeamPost id %d", id),
		`SELECT * FROM team_posts WHERE id = ?`, id)
	if err != nil {
		return post, err
	}

	posts := []models.TeamPost{post}
	if err := d.loadRelations(ctx, posts); err != nil {
		return post, err
	}
	return posts[0], nil
}

// ListTeamPosts returns posts newest first. PhaseAll (or "") disables the
// phase filter and a non-positive limit returns every row.
func (d *Database) ListTeamPosts(ctx context.Context, phase models.Phase, limit int) ([]models.TeamPost, error) {
	query := `SELECT * FROM team_posts`
	var args []interface{}
	if phase != "" && phase != models.PhaseAll {
		query += ` WHERE phase = ?`
		args = append(args, string(phase))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var posts []models.TeamPost
	if err := d.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	if err := d.loadRelations(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// PhaseCounts returns the number of posts per stored phase.
func (d *Database) PhaseCounts(ctx context.Context) (map[models.Phase]int, error) {
	rows := []struct {
		Phase models.Phase `db:"phase"`
		Total int          `db:"total"`
	}{}
	err := d.db.SelectContext(ctx, &rows, `SELECT phase, COUNT(id) AS total FROM team_posts GROUP BY phase`)
	if err != nil {
		return nil, err
	}

	counts := make(map[models.Phase]int, len(rows))
	for _, r := range rows {
		counts[r.Phase] = r.Total
	}
	return counts, nil
}

// FindTeamPosts returns posts matching every non-empty field of filter,
// newest first. A competition title matches either the linked competition or
// the free-text name.
func (d *Database) FindTeamPosts(ctx context.Context, filter models.MatchFilter) ([]models.TeamPost, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.CompetitionID != nil {
		where = append(where, `p.competition_id = ?`)
		args = append(args, *filter.CompetitionID)
	}
	if filter.CompetitionTitle != "" {
		where = append(where, `(c.title = ? OR p.custom_competition = ?)`)
		args = append(args, filter.CompetitionTitle, filter.CompetitionTitle)
	}
	if filter.Level != "" {
		where = append(where, `p.level = ?`)
		args = append(args, filter.Level)
	}

	query := `SELECT p.* FROM team_posts p LEFT JOIN competitions c ON c.id = p.competition_id`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY p.created_at DESC, p.id DESC`

	var posts []models.TeamPost
	if err := d.db.SelectContext(ctx, &posts, query, args...); err != nil {
		return nil, err
	}
	if err := d.loadRelations(ctx, posts); err != nil {
		return nil, err
	}
	return posts, nil
}

func (d *Database) CreateTeamApplication(ctx context.Context, app *models.TeamApplication) error {
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now().UTC()
	}
	id, err := d.insert(ctx, `
INSERT INTO team_applications (post_id, user_id, applicant_name, contact, message, desired_role, level, created_at)
VALUES (:post_id, :user_id, :applicant_name, :contact, :message, :desired_role, :level, :created_at);`, app)
	if err != nil {
		return err
	}
	app.ID = id
	return nil
}

// GetApplicationByPostAndUser returns the user's application to the post, if any.
func (d *Database) GetApplicationByPostAndUser(ctx context.Context, postID, userID int64) (models.TeamApplication, error) {
	var app models.TeamApplication
	err := d.getOne(ctx, &app, fmt.Sprintf("TeamApplication post %d user %d", postID, userID),
		`SELECT * FROM team_applications WHERE post_id = ? AND user_id = ? ORDER BY id LIMIT 1`, postID, userID)
	return app, err
}

// ListApplications returns the applications of a post, newest first.
func (d *Database) ListApplications(ctx context.Context, postID int64) ([]models.TeamApplication, error) {
	var apps []models.TeamApplication
	err := d.db.SelectContext(ctx, &apps,
		`SELECT * FROM team_applications WHERE post_id = ? ORDER BY created_at DESC, id DESC`, postID)
	if err != nil {
		return nil, err
	}
	return apps, nil
}

// loadRelations fills Competition and Applications of posts in two queries.
func (d *Database) loadRelations(ctx context.Context, posts []models.TeamPost) error {
	if len(posts) == 0 {
		return nil
	}

	postIDs := make([]int64, 0, len(posts))
	var competitionIDs []int64
	for _, p := range posts {
		postIDs = append(postIDs, p.ID)
		if p.CompetitionID != nil {
			competitionIDs = append(competitionIDs, *p.CompetitionID)
		}
	}

	competitions := map[int64]*models.Competition{}
	if len(competitionIDs) > 0 {
		query, args, err := sqlx.In(`SELECT * FROM competitions WHERE id IN (?)`, competitionIDs)
		if err != nil {
			return err
		}
		var rows []models.Competition
		if err := d.db.SelectContext(ctx, &rows, d.db.Rebind(query), args...); err != nil {
			return err
		}
		for i := range rows {
			competitions[rows[i].ID] = &rows[i]
		}
	}

	query, args, err := sqlx.In(
		`SELECT * FROM team_applications WHERE post_id IN (?) ORDER BY created_at DESC, id DESC`, postIDs)
	if err != nil {
		return err
	}
	var apps []models.TeamApplication
	if err := d.db.SelectContext(ctx, &apps, d.db.Rebind(query), args...); err != nil {
		return err
	}
	byPost := map[int64][]models.TeamApplication{}
	for _, a := range apps {
		byPost[a.PostID] = append(byPost[a.PostID], a)
	}

	for i := range posts {
		if posts[i].CompetitionID != nil {
			posts[i].Competition = competitions[*posts[i].CompetitionID]
		}
		posts[i].Applications = byPost[posts[i].ID]
	}
	return nil
}

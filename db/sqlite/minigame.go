package sqlite

import (
	"context"
	"time"

	"hspace-portal/models"
)

func (d *Database) CreateScore(ctx context.Context, score *models.TetrisScore) error {
	if score.CreatedAt.IsZero() {
		score.CreatedAt = time.Now().UTC()
	}
	id, err := d.insert(ctx, `
INSERT INTO tetris_scores (user_id, score, level, created_at)
VALUES (:user_id, :score, :level, :created_at);`, score)
	if err != nil {
		return err
	}
	score.ID = id
	return nil
}

// TopScores returns the best scores with the player names; the earlier run
// ranks first on a tie.
func (d *Database) TopScores(ctx context.Context, limit int) ([]models.ScoreEntry, error) {
	var entries []models.ScoreEntry
	err := d.db.SelectContext(ctx, &entries, `
SELECT s.id, s.user_id, s.score, s.level, s.created_at, u.username
FROM tetris_scores s
         JOIN users u ON u.id = s.user_id
ORDER BY s.score DESC, s.created_at ASC, s.id ASC
LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

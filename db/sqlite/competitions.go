package sqlite

import (
	"context"
	"fmt"
	"time"

	dberrors "hspace-portal/db/errors"
	"hspace-portal/models"
)

func (d *Database) CreateCompetition(ctx context.Context, c *models.Competition) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	id, err := d.insert(ctx, `
INSERT INTO competitions (title, organizer, apply_start, apply_end, event_start, event_end,
                          summary, mode, tags, difficulty, cover_image, approved, created_at)
VALUES (:title, :organizer, :apply_start, :apply_end, :event_start, :event_end,
        :summary, :mode, :tags, :difficulty, :cover_image, :approved, :created_at);`, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (d *Database) UpdateCompetition(ctx context.Context, c *models.Competition) error {
	res, err := d.db.NamedExecContext(ctx, `
UPDATE competitions
SET title = :title, organizer = :organizer,
    apply_start = :apply_start, apply_end = :apply_end,
    event_start = :event_start, event_end = :event_end,
    summary = :summary, mode = :mode, tags = :tags, difficulty = :difficulty,
    cover_image = :cover_image, approved = :approved
WHERE id = :id;`, c)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected, fmt.Sprintf("Competition id %d", c.ID))
}

func (d *Database) GetCompetition(ctx context.Context, id int64) (models.Competition, error) {
	var c models.Competition
	err := d.getOne(ctx, &c, fmt.Sprintf("Competition id %d", id),
		`SELECT * FROM competitions WHERE id = ?`, id)
	return c, err
}

// GetCompetitionByTitle returns the oldest competition with exactly this title.
func (d *Database) GetCompetitionByTitle(ctx context.Context, title string) (models.Competition, error) {
	var c models.Competition
	err := d.getOne(ctx, &c, fmt.Sprintf("Competition title %q", title),
		`SELECT * FROM competitions WHERE title = ? ORDER BY id LIMIT 1`, title)
	return c, err
}

// ListCompetitions returns competitions newest first.
func (d *Database) ListCompetitions(ctx context.Context, approvedOnly bool) ([]models.Competition, error) {
	query := `SELECT * FROM competitions`
	if approvedOnly {
		query += ` WHERE approved = 1`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	var competitions []models.Competition
	if err := d.db.SelectContext(ctx, &competitions, query); err != nil {
		return nil, err
	}
	return competitions, nil
}

func (d *Database) SetCompetitionApproved(ctx context.Context, id int64, approved bool) error {
	res, err := d.db.ExecContext(ctx, `UPDATE competitions SET approved = ? WHERE id = ?`, approved, id)
	if err != nil {
		return err
	}
	return requireAffected(res.RowsAffected, fmt.Sprintf("Competition id %d", id))
}

func requireAffected(rowsAffected func() (int64, error), what string) error {
	n, err := rowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return dberrors.NewEntryNotFound(fmt.Sprintf("no entries for %s", what))
	}
	return nil
}

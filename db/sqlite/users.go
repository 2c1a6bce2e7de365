package sqlite

import (
	"context"
	"fmt"
	"time"

	"hspace-portal/models"
)

func (d *Database) CreateUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	id, err := d.insert(ctx, `
INSERT INTO users (username, password_hash, created_at)
VALUES (:username, :password_hash, :created_at);`, user)
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (d *Database) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := d.getOne(ctx, &user, fmt.Sprintf("User name %q", username),
		`SELECT * FROM users WHERE username = ?`, username)
	return user, err
}

func (d *Database) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := d.getOne(ctx, &user, fmt.Sprintf("User id %d", id),
		`SELECT * FROM users WHERE id = ?`, id)
	return user, err
}

// File: models/minigame.go
package models

import "time"

// TetrisScore is one finished minigame run.
type TetrisScore struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"user_id"`
	Score     int       `db:"score" json:"score"`
	Level     int       `db:"level" json:"level"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ScoreEntry is a leaderboard row joined with the player's name.
type ScoreEntry struct {
	TetrisScore
	Username string `db:"username" json:"username"`
}

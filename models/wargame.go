// File: models/wargame.go
package models

import "time"

// WargameChallenge is a flag-submission challenge.
type WargameChallenge struct {
	ID             int64     `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Summary        string    `db:"summary" json:"summary"`
	Difficulty     string    `db:"difficulty" json:"difficulty"`
	Category       string    `db:"category" json:"category"`
	FlagAnswer     string    `db:"flag_answer" json:"-"`
	Hint           string    `db:"hint" json:"hint"`
	RewardPoints   int       `db:"reward_points" json:"reward_points"`
	AttachmentPath string    `db:"attachment_path" json:"attachment_path"`
	IsCommunity    bool      `db:"is_community" json:"is_community"`
	AuthorID       *int64    `db:"author_id" json:"author_id"`
	AuthorName     string    `db:"author_name" json:"author_name"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// WargameAttempt is one flag submission.
type WargameAttempt struct {
	ID            int64     `db:"id" json:"id"`
	ChallengeID   int64     `db:"challenge_id" json:"challenge_id"`
	UserID        *int64    `db:"user_id" json:"user_id"`
	SubmittedFlag string    `db:"submitted_flag" json:"submitted_flag"`
	IsCorrect     bool      `db:"is_correct" json:"is_correct"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// ChallengeView is a challenge with its solve count, as listed on the dashboard.
type ChallengeView struct {
	WargameChallenge
	SolvedCount int `db:"solved_count" json:"solved_count"`
}

// SolverRank is one leaderboard row.
type SolverRank struct {
	Username string `db:"username" json:"username"`
	Solved   int    `db:"solved" json:"solved"`
}

// AttemptView is a user's recent attempt with its challenge.
type AttemptView struct {
	Challenge     string    `db:"challenge" json:"challenge"`
	Difficulty    string    `db:"difficulty" json:"difficulty"`
	IsCorrect     bool      `db:"is_correct" json:"is_correct"`
	SubmittedFlag string    `db:"submitted_flag" json:"submitted_flag"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// WargameStats are the board-wide counters.
type WargameStats struct {
	TotalChallenges int `db:"total_challenges" json:"total_challenges"`
	CommunityCount  int `db:"community_count" json:"community_count"`
	SolvedTotal     int `db:"solved_total" json:"solved_total"`
}

// UserWargameStats summarize one user's attempts.
type UserWargameStats struct {
	TotalAttempts    int     `json:"total_attempts"`
	TotalSolves      int     `json:"total_solves"`
	Accuracy         float64 `json:"accuracy"`
	FavoriteCategory string  `json:"favorite_category"`
	RewardPoints     int     `json:"reward_points"`
}

// Challenge sort orders.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortReward  = "reward"
	SortPopular = "popular"
)

// ChallengeFilter selects dashboard challenges. "all" and "" disable a filter.
type ChallengeFilter struct {
	Difficulty string
	Category   string
	Search     string
	Sort       string
}

// Package services holds the portal's business logic between the gin handlers
// and the sqlite store.
// File: services/stores.go
package services

import (
	"context"

	"hspace-portal/models"
)

// The store interfaces below are satisfied by *sqlite.Database.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByID(ctx context.Context, id int64) (models.User, error)
}

type CompetitionStore interface {
	CreateCompetition(ctx context.Context, c *models.Competition) error
	UpdateCompetition(ctx context.Context, c *models.Competition) error
	GetCompetitionByTitle(ctx context.Context, title string) (models.Competition, error)
	ListCompetitions(ctx context.Context, approvedOnly bool) ([]models.Competition, error)
	SetCompetitionApproved(ctx context.Context, id int64, approved bool) error
	GetCompetition(ctx context.Context, id int64) (models.Competition, error)
}

type TeamStore interface {
	CreateTeamPost(ctx context.Context, post *models.TeamPost) error
	GetTeamPost(ctx context.Context, id int64) (models.TeamPost, error)
	ListTeamPosts(ctx context.Context, phase models.Phase, limit int) ([]models.TeamPost, error)
	PhaseCounts(ctx context.Context) (map[models.Phase]int, error)
	FindTeamPosts(ctx context.Context, filter models.MatchFilter) ([]models.TeamPost, error)
	CreateTeamApplication(ctx context.Context, app *models.TeamApplication) error
	GetApplicationByPostAndUser(ctx context.Context, postID, userID int64) (models.TeamApplication, error)
	ListApplications(ctx context.Context, postID int64) ([]models.TeamApplication, error)
}

type WargameStore interface {
	CreateChallenge(ctx context.Context, ch *models.WargameChallenge) error
	GetChallenge(ctx context.Context, id int64) (models.WargameChallenge, error)
	ListChallengeTitles(ctx context.Context) ([]string, error)
	ListChallenges(ctx context.Context, filter models.ChallengeFilter) ([]models.ChallengeView, error)
	RecentCommunityChallenges(ctx context.Context, limit int) ([]models.ChallengeView, error)
	ListCategories(ctx context.Context) ([]string, error)
	WargameStats(ctx context.Context) (models.WargameStats, error)
	SolverLeaderboard(ctx context.Context, limit int) ([]models.SolverRank, error)
	CreateAttempt(ctx context.Context, attempt *models.WargameAttempt) error
	UserWargameStats(ctx context.Context, userID int64) (models.UserWargameStats, error)
	RecentAttempts(ctx context.Context, userID int64, limit int) ([]models.AttemptView, error)
}

type ScoreStore interface {
	CreateScore(ctx context.Context, score *models.TetrisScore) error
	TopScores(ctx context.Context, limit int) ([]models.ScoreEntry, error)
}

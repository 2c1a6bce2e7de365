// File: services/minigame_service.go
package services

import (
	"context"

	"hspace-portal/logger"
	"hspace-portal/metrics"
	"hspace-portal/models"
)

const (
	// PageLeaderboardSize is shown on the minigame page and pushed to the live feed.
	PageLeaderboardSize = 10
	// APILeaderboardSize is returned by the JSON leaderboard.
	APILeaderboardSize = 50

	leaderboardTopic  = "leaderboard"
	createdAtLayout   = "2006-01-02 15:04:05"
	defaultScoreLevel = 1
)

// Broadcaster pushes a message to live-feed subscribers of a topic.
type Broadcaster interface {
	BroadcastMessage(topic string, msg map[string]interface{})
}

// LeaderboardRow is one ranked score.
type LeaderboardRow struct {
	Rank      int    `json:"rank"`
	Username  string `json:"username"`
	Score     int    `json:"score"`
	Level     int    `json:"level"`
	CreatedAt string `json:"created_at"`
}

type MinigameService struct {
	scores      ScoreStore
	broadcaster Broadcaster
	metrics     metrics.Publisher
}

func NewMinigameService(scores ScoreStore, broadcaster Broadcaster, publisher metrics.Publisher) *MinigameService {
	if publisher == nil {
		publisher = metrics.Noop{}
	}
	return &MinigameService{scores: scores, broadcaster: broadcaster, metrics: publisher}
}

// SubmitScore stores a finished run and pushes the refreshed top 10 to the
// live feed. A missing level counts as level 1.
func (s *MinigameService) SubmitScore(ctx context.Context, userID int64, score, level int) (models.TetrisScore, error) {
	if level <= 0 {
		level = defaultScoreLevel
	}
	entry := models.TetrisScore{UserID: userID, Score: score, Level: level}
	if err := s.scores.CreateScore(ctx, &entry); err != nil {
		logger.Error.Printf("SubmitScore: failed to store score for user %d: %v", userID, err)
		return models.TetrisScore{}, err
	}
	logger.Info.Printf("SubmitScore: user %d scored %d at level %d", userID, score, level)
	s.metrics.PutMetric("MinigameScoresSubmitted", 1, metrics.UnitCount)

	if s.broadcaster != nil {
		top, err := s.Leaderboard(ctx, PageLeaderboardSize)
		if err != nil {
			// The score is stored; only the push is lost.
			logger.Warn.Printf("SubmitScore: could not load leaderboard for broadcast: %v", err)
			return entry, nil
		}
		s.broadcaster.BroadcastMessage(leaderboardTopic, map[string]interface{}{
			"action":      "scoreSubmitted",
			"leaderboard": top,
		})
	}
	return entry, nil
}

// Leaderboard returns the best limit scores, ranked from 1.
func (s *MinigameService) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	entries, err := s.scores.TopScores(ctx, limit)
	if err != nil {
		return nil, err
	}

	rows := make([]LeaderboardRow, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, LeaderboardRow{
			Rank:      i + 1,
			Username:  e.Username,
			Score:     e.Score,
			Level:     e.Level,
			CreatedAt: e.CreatedAt.Format(createdAtLayout),
		})
	}
	return rows, nil
}

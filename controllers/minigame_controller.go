// File: controllers/minigame_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hspace-portal/logger"
	"hspace-portal/services"
)

// LiveFeed upgrades a request to the live leaderboard websocket.
type LiveFeed interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
}

// MinigameController serves the tetris page, its score API and live feed.
type MinigameController struct {
	minigame *services.MinigameService
	feed     LiveFeed
}

func NewMinigameController(minigame *services.MinigameService, feed LiveFeed) *MinigameController {
	return &MinigameController{minigame: minigame, feed: feed}
}

type scoreRequest struct {
	Score int `json:"score"`
	Level int `json:"level"`
}

func (mc *MinigameController) Page(c *gin.Context) {
	rows, err := mc.minigame.Leaderboard(c.Request.Context(), services.PageLeaderboardSize)
	if err != nil {
		serverError(c, "Minigame.Page", err)
		return
	}
	render(c, http.StatusOK, "minigame.html", gin.H{"Leaderboard": rows})
}

// SubmitScore stores a finished run for the logged-in player.
func (mc *MinigameController) SubmitScore(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Login required."})
		return
	}

	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn.Printf("SubmitScore: invalid payload from user %d: %v", user.ID, err)
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid score payload."})
		return
	}

	if _, err := mc.minigame.SubmitScore(c.Request.Context(), user.ID, req.Score, req.Level); err != nil {
		logger.Error.Printf("SubmitScore: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not save the score."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Your score has been saved."})
}

// Leaderboard returns the top 50 scores as JSON.
func (mc *MinigameController) Leaderboard(c *gin.Context) {
	rows, err := mc.minigame.Leaderboard(c.Request.Context(), services.APILeaderboardSize)
	if err != nil {
		logger.Error.Printf("Leaderboard: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Could not load the leaderboard."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "leaderboard": rows})
}

// Live hands the connection to the websocket hub.
func (mc *MinigameController) Live(c *gin.Context) {
	mc.feed.ServeWs(c.Writer, c.Request)
}

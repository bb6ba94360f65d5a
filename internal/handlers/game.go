package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"casino-lobby/internal/engine"
	"casino-lobby/internal/models"
)

type GameHandler struct {
	engine *engine.Engine
}

func NewGameHandler(eng *engine.Engine) *GameHandler {
	return &GameHandler{engine: eng}
}

// player resolves the authenticated player, writing the error response when
// it cannot.
func player(c *gin.Context, eng *engine.Engine) (*engine.Player, bool) {
	playerID := c.GetString("player_id")
	if playerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Player not authenticated"})
		return nil, false
	}

	p, err := eng.Lobby().Player(c.Request.Context(), playerID)
	if err != nil {
		respondError(c, "Player not found", err)
		return nil, false
	}
	return p, true
}

func (h *GameHandler) ListGames(c *gin.Context) {
	games := h.engine.Catalogue()
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   games,
		"count":   len(games),
	})
}

func (h *GameHandler) PlaceBet(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	var req models.Bet
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := h.engine.PlaceBet(p, req)
	if err != nil {
		respondError(c, "Failed to place bet", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
		"balance": p.Balance(),
	})
}

func (h *GameHandler) Settle(c *gin.Context) {
	h.record(c, "Failed to settle", h.engine.Settle)
}

func (h *GameHandler) Cashout(c *gin.Context) {
	h.record(c, "Failed to cashout", h.engine.CashOut)
}

func (h *GameHandler) Abandon(c *gin.Context) {
	h.record(c, "Failed to abandon", h.engine.Abandon)
}

func (h *GameHandler) Hit(c *gin.Context) {
	h.action(c, "Failed to hit", h.engine.Hit)
}

func (h *GameHandler) Stand(c *gin.Context) {
	h.action(c, "Failed to stand", h.engine.Stand)
}

// record handles the session actions that end with a wager record.
func (h *GameHandler) record(c *gin.Context, message string, fn func(*engine.Player, string) (models.WagerRecord, error)) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	rec, err := fn(p, req.SessionID)
	if err != nil {
		respondError(c, message, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"result":  rec,
		"balance": p.Balance(),
	})
}

// action handles the blackjack moves that return the updated session.
func (h *GameHandler) action(c *gin.Context, message string, fn func(*engine.Player, string) (models.SessionView, error)) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	var req models.SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	session, err := fn(p, req.SessionID)
	if err != nil {
		respondError(c, message, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
		"balance": p.Balance(),
	})
}

func (h *GameHandler) GetSession(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	session, err := h.engine.Session(p, c.Param("id"))
	if err != nil {
		respondError(c, "Failed to get session", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"session": session,
	})
}

func (h *GameHandler) GetActiveGames(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	sessions := h.engine.Active(p)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"games":   sessions,
		"count":   len(sessions),
	})
}

func (h *GameHandler) GetGameHistory(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > 100 {
		limit = 50
	}

	records := h.engine.History(p, limit)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": records,
		"count":   len(records),
	})
}

func (h *GameHandler) GetStats(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"stats":   h.engine.Stats(p),
	})
}

func (h *GameHandler) GetCrashHistory(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"history": h.engine.CrashHistory(p),
	})
}

func (h *GameHandler) GetVerificationData(c *gin.Context) {
	v := h.engine.Verification()
	if v == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provably fair mode is disabled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"verification": v,
	})
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"casino-lobby/internal/engine"
	"casino-lobby/internal/models"
	"casino-lobby/internal/services"
)

type AuthHandler struct {
	engine     *engine.Engine
	jwtService *services.JWTService
}

func NewAuthHandler(eng *engine.Engine, jwtService *services.JWTService) *AuthHandler {
	return &AuthHandler{engine: eng, jwtService: jwtService}
}

// Guest opens a new player with the starting credits and returns its token.
func (h *AuthHandler) Guest(c *gin.Context) {
	p := h.engine.Lobby().CreatePlayer()

	token, err := h.jwtService.GenerateToken(p.ID())
	if err != nil {
		respondError(c, "Failed to issue token", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"player": h.engine.View(p),
	})
}

type UserHandler struct {
	engine *engine.Engine
	now    func() time.Time
}

func NewUserHandler(eng *engine.Engine) *UserHandler {
	return &UserHandler{engine: eng, now: time.Now}
}

func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"player": h.engine.View(p),
		"stats":  h.engine.Stats(p),
	})
}

func (h *UserHandler) GetBalance(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": h.engine.Balance(p),
	})
}

// Deposit credits the wallet without any payment verification.
func (h *UserHandler) Deposit(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	var req models.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	balance, err := h.engine.Deposit(p, req.Amount)
	if err != nil {
		respondError(c, "Failed to deposit", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"balance": balance,
	})
}

func (h *UserHandler) ClaimDailyBonus(c *gin.Context) {
	p, ok := player(c, h.engine)
	if !ok {
		return
	}

	bonus, err := h.engine.ClaimDailyBonus(p, h.now())
	if err != nil {
		respondError(c, "Daily bonus unavailable", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"bonus":   bonus,
		"player":  h.engine.View(p),
	})
}

package handlers

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the authenticated API on group.
func RegisterRoutes(group *gin.RouterGroup, game *GameHandler, user *UserHandler, ws *WebSocketHandler) {
	group.GET("/me", user.GetCurrentUser)
	group.POST("/bonus/daily", user.ClaimDailyBonus)

	wallet := group.Group("/wallet")
	{
		wallet.GET("/balance", user.GetBalance)
		wallet.POST("/deposit", user.Deposit)
	}

	games := group.Group("/games")
	{
		games.GET("", game.ListGames)
		games.POST("/bet", game.PlaceBet)
		games.POST("/settle", game.Settle)
		games.POST("/abandon", game.Abandon)
		games.POST("/blackjack/hit", game.Hit)
		games.POST("/blackjack/stand", game.Stand)
		games.POST("/crash/cashout", game.Cashout)
		games.GET("/active", game.GetActiveGames)
		games.GET("/sessions/:id", game.GetSession)
		games.GET("/history", game.GetGameHistory)
		games.GET("/stats", game.GetStats)
		games.GET("/crash/history", game.GetCrashHistory)
		games.GET("/verification", game.GetVerificationData)
	}

	if ws != nil {
		group.GET("/ws", ws.HandleWebSocket)
	}
}

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"casino-lobby/internal/engine"
	"casino-lobby/internal/games"
	"casino-lobby/internal/handlers"
	"casino-lobby/internal/middleware"
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
	"casino-lobby/internal/services"
	"casino-lobby/internal/timer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testLimits = map[models.GameID]models.BetLimits{
	models.GameSlots:     {MinBet: 10, MaxBet: 1000},
	models.GameRoulette:  {MinBet: 10, MaxBet: 1000},
	models.GameDice:      {MinBet: 10, MaxBet: 1000},
	models.GameBlackjack: {MinBet: 10, MaxBet: 1000},
	models.GameWheel:     {MinBet: 10, MaxBet: 1000},
	models.GameKeno:      {MinBet: 10, MaxBet: 1000},
	models.GameCrash:     {MinBet: 10, MaxBet: 1000},
}

// fixedDice always rolls 5 and 6, so "higher" wins.
type fixedDice struct {
	games.Generator
}

func (fixedDice) RollDice() games.DiceRoll { return games.DiceRoll{5, 6} }

type testServer struct {
	router *gin.Engine
	engine *engine.Engine
	jwt    *services.JWTService
}

func newEngine(t *testing.T, cast engine.Broadcaster) *engine.Engine {
	t.Helper()

	eng, err := engine.New(engine.Options{
		Limits:          testLimits,
		StartingCredits: 1000,
		CrashTick:       50 * time.Millisecond,
		Generator:       fixedDice{games.NewGenerator(rng.NewSeeded(3))},
		Scheduler:       timer.NewManual(),
		Broadcaster:     cast,
	})
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	return eng
}

func newTestServer(t *testing.T, limiter middleware.RateLimiter) *testServer {
	t.Helper()

	eng := newEngine(t, nil)

	jwtService := services.NewJWTService("test-secret", time.Hour)
	user := handlers.NewUserHandler(eng)

	router := gin.New()
	router.POST("/auth/guest", handlers.NewAuthHandler(eng, jwtService).Guest)
	api := router.Group("/api")
	api.Use(middleware.AuthMiddleware(jwtService))
	if limiter != nil {
		api.Use(middleware.RateLimitMiddleware(limiter))
	}
	handlers.RegisterRoutes(api, handlers.NewGameHandler(eng), user, nil)

	return &testServer{router: router, engine: eng, jwt: jwtService}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("Failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("Response is not JSON: %s", w.Body.String())
		}
	}
	return w, out
}

func (s *testServer) guest(t *testing.T) string {
	t.Helper()
	w, body := s.do(t, http.MethodPost, "/auth/guest", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Guest login failed: %d %s", w.Code, w.Body.String())
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("Guest login returned no token")
	}
	return token
}

func TestGuestAndMe(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	w, body := s.do(t, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	p := body["player"].(map[string]any)
	if p["credits"].(float64) != 1000 {
		t.Errorf("Expected 1000 starting credits, got %v", p["credits"])
	}
	if p["vip_level"].(float64) != 1 {
		t.Errorf("Expected VIP level 1, got %v", p["vip_level"])
	}
}

func TestGuestRequiresPost(t *testing.T) {
	s := newTestServer(t, nil)

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/guest", nil))
	if w.Code == http.StatusOK {
		t.Fatal("GET must not create a guest")
	}
	if n := s.engine.Lobby().Len(); n != 0 {
		t.Errorf("Expected no players, got %d", n)
	}
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t, nil)

	w, _ := s.do(t, http.MethodGet, "/api/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", w.Code)
	}

	w, _ = s.do(t, http.MethodGet, "/api/me", "not-a-token", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401 for bad token, got %d", w.Code)
	}

	// A valid token for a player the lobby never saw.
	token, err := s.jwt.GenerateToken("ghost")
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	w, _ = s.do(t, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown player, got %d", w.Code)
	}
}

func TestTokenFromQuery(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	w, _ := s.do(t, http.MethodGet, "/api/wallet/balance?token="+token, "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 with query token, got %d", w.Code)
	}
}

func TestListGames(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	w, body := s.do(t, http.MethodGet, "/api/games", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}
	if body["count"].(float64) != float64(len(models.Catalogue)) {
		t.Errorf("Expected %d games, got %v", len(models.Catalogue), body["count"])
	}
}

func TestDiceBetAndSettle(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	bet := models.Bet{
		GameID:    models.GameDice,
		Amount:    100,
		Selection: models.Selection{Prediction: models.PredictionHigher},
	}
	w, body := s.do(t, http.MethodPost, "/api/games/bet", token, bet)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["balance"].(float64) != 900 {
		t.Errorf("Expected balance 900 after bet, got %v", body["balance"])
	}
	session := body["session"].(map[string]any)
	id := session["id"].(string)
	if session["status"] != string(models.StatusBetPlaced) {
		t.Errorf("Expected status bet_placed, got %v", session["status"])
	}

	// Second bet on the same game waits for the first.
	w, _ = s.do(t, http.MethodPost, "/api/games/bet", token, bet)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for pending session, got %d", w.Code)
	}

	w, body = s.do(t, http.MethodPost, "/api/games/settle", token, models.SessionRequest{SessionID: id})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	result := body["result"].(map[string]any)
	if result["payout"].(float64) != 200 || result["result"] != string(models.ResultWin) {
		t.Errorf("Expected win paying 200, got %v", result)
	}
	if body["balance"].(float64) != 1100 {
		t.Errorf("Expected balance 1100, got %v", body["balance"])
	}

	w, _ = s.do(t, http.MethodPost, "/api/games/settle", token, models.SessionRequest{SessionID: id})
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 settling twice, got %d", w.Code)
	}

	w, body = s.do(t, http.MethodGet, "/api/games/history?limit=10", token, nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 1 {
		t.Errorf("Expected one history record, got %d %v", w.Code, body["count"])
	}

	w, body = s.do(t, http.MethodGet, "/api/games/stats", token, nil)
	stats := body["stats"].(map[string]any)
	if stats["win_rate"].(float64) != 100 || stats["net_profit"].(float64) != 100 {
		t.Errorf("Unexpected stats %v", stats)
	}
}

func TestBetErrors(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	tests := []struct {
		name string
		bet  any
		want int
	}{
		{"malformed", map[string]any{"game_id": "dice"}, http.StatusBadRequest},
		{"unknown game", models.Bet{GameID: "poker", Amount: 100}, http.StatusBadRequest},
		{"below minimum", models.Bet{GameID: models.GameSlots, Amount: 5}, http.StatusBadRequest},
		{"missing prediction", models.Bet{GameID: models.GameDice, Amount: 100}, http.StatusBadRequest},
		{"spend balance", models.Bet{GameID: models.GameSlots, Amount: 1000}, http.StatusOK},
		{"broke", models.Bet{GameID: models.GameWheel, Amount: 10}, http.StatusPaymentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := s.do(t, http.MethodPost, "/api/games/bet", token, tt.bet)
			if w.Code != tt.want {
				t.Errorf("Expected %d, got %d: %s", tt.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestUnknownSession(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	for _, path := range []string{"/api/games/settle", "/api/games/abandon", "/api/games/crash/cashout", "/api/games/blackjack/hit"} {
		w, _ := s.do(t, http.MethodPost, path, token, models.SessionRequest{SessionID: "missing"})
		if w.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, w.Code)
		}
	}

	w, _ := s.do(t, http.MethodGet, "/api/games/sessions/missing", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestAbandonForfeitsStake(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	_, body := s.do(t, http.MethodPost, "/api/games/bet", token, models.Bet{GameID: models.GameBlackjack, Amount: 100})
	id := body["session"].(map[string]any)["id"].(string)

	w, body := s.do(t, http.MethodGet, "/api/games/active", token, nil)
	if w.Code != http.StatusOK || body["count"].(float64) != 1 {
		t.Fatalf("Expected one active session, got %v", body["count"])
	}

	w, body = s.do(t, http.MethodPost, "/api/games/abandon", token, models.SessionRequest{SessionID: id})
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if body["balance"].(float64) != 900 {
		t.Errorf("Expected stake forfeited, balance %v", body["balance"])
	}

	_, body = s.do(t, http.MethodGet, "/api/games/active", token, nil)
	if body["count"].(float64) != 0 {
		t.Errorf("Expected no active sessions, got %v", body["count"])
	}
}

func TestDepositAndBonus(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	w, body := s.do(t, http.MethodPost, "/api/wallet/deposit", token, models.DepositRequest{Amount: 250})
	if w.Code != http.StatusOK || body["balance"].(float64) != 1250 {
		t.Fatalf("Unexpected deposit response %d %v", w.Code, body)
	}

	w, _ = s.do(t, http.MethodPost, "/api/wallet/deposit", token, models.DepositRequest{Amount: -5})
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for negative deposit, got %d", w.Code)
	}

	w, body = s.do(t, http.MethodPost, "/api/bonus/daily", token, nil)
	if w.Code != http.StatusOK || body["bonus"].(float64) != 100 {
		t.Fatalf("Unexpected bonus response %d %v", w.Code, body)
	}

	w, _ = s.do(t, http.MethodPost, "/api/bonus/daily", token, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("Expected 409 for second claim, got %d", w.Code)
	}

	_, body = s.do(t, http.MethodGet, "/api/wallet/balance", token, nil)
	if body["balance"].(map[string]any)["balance"].(float64) != 1350 {
		t.Errorf("Expected balance 1350, got %v", body["balance"])
	}
}

func TestVerificationDisabled(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.guest(t)

	w, _ := s.do(t, http.MethodGet, "/api/games/verification", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 without fair mode, got %d", w.Code)
	}
}

type countingLimiter struct {
	calls int
	limit int
	err   error
}

func (l *countingLimiter) CheckRateLimit(_ context.Context, _, _ string, _ int, _ time.Duration) (bool, error) {
	l.calls++
	return l.calls <= l.limit, l.err
}

func TestRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 1}
	s := newTestServer(t, limiter)
	token := s.guest(t)

	bet := models.Bet{GameID: models.GameSlots, Amount: 10}
	w, _ := s.do(t, http.MethodPost, "/api/games/bet", token, bet)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected first bet to pass, got %d", w.Code)
	}

	w, body := s.do(t, http.MethodPost, "/api/games/bet", token, bet)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d", w.Code)
	}
	if body["retry_after"].(float64) != 60 {
		t.Errorf("Expected retry_after 60, got %v", body["retry_after"])
	}

	// Reads are not limited.
	w, _ = s.do(t, http.MethodGet, "/api/games/active", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("Expected reads to pass, got %d", w.Code)
	}
	if limiter.calls != 2 {
		t.Errorf("Expected 2 limiter calls, got %d", limiter.calls)
	}
}

package engine

import (
	"time"

	"casino-lobby/internal/games"
	"casino-lobby/internal/models"
)

type session struct {
	id        string
	playerID  string
	bet       models.Bet
	status    models.SessionStatus
	createdAt time.Time
	updatedAt time.Time

	outcome *models.Outcome
	record  *models.WagerRecord
	timers  []int64

	// blackjack
	shoe   *games.Shoe
	hand   []games.Card
	dealer []games.Card

	// crash
	round games.CrashRound
}

func (s *session) game() models.GameID { return s.bet.GameID }

func (s *session) view() models.SessionView {
	v := models.SessionView{
		ID:        s.id,
		PlayerID:  s.playerID,
		GameID:    s.bet.GameID,
		Amount:    s.bet.Amount,
		Selection: s.bet.Clone().Selection,
		Status:    s.status,
		CreatedAt: s.createdAt,
	}
	if s.outcome != nil {
		o := *s.outcome
		v.Outcome = &o
	}
	if s.record != nil {
		r := *s.record
		v.Record = &r
	}

	switch s.bet.GameID {
	case models.GameBlackjack:
		v.Blackjack = &models.BlackjackView{
			PlayerHand:  games.CardViews(s.hand),
			DealerHand:  games.CardViews(s.dealer),
			PlayerTotal: games.HandValue(s.hand),
			DealerTotal: games.HandValue(s.dealer),
		}
	case models.GameCrash:
		v.Crash = &models.CrashView{
			Multiplier:  s.round.Current.Float(),
			AutoCashout: s.round.Auto.Float(),
		}
		if s.status.Terminal() {
			v.Crash.CrashPoint = s.round.Point.Float()
		}
	}
	return v
}

package engine

import (
	"fmt"

	"casino-lobby/internal/games"
	"casino-lobby/internal/models"
)

func (p *Player) blackjack(sessionID string) (*session, error) {
	s, err := p.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	if s.game() != models.GameBlackjack {
		return nil, fmt.Errorf("%w: %s is a %s session", models.ErrSessionNotActive, s.id, s.game())
	}
	if s.status != models.StatusPlayerTurn {
		return nil, fmt.Errorf("%w: session %s is %s", models.ErrSessionNotActive, s.id, s.status)
	}
	return s, nil
}

// Hit draws one card for the player. Going over 21 settles the hand as a
// loss immediately.
func (e *Engine) Hit(p *Player, sessionID string) (models.SessionView, error) {
	var (
		view models.SessionView
		err  error
	)
	if lerr := e.locked(p, func(out *outbox) {
		var s *session
		if s, err = p.blackjack(sessionID); err != nil {
			return
		}
		s.hand = append(s.hand, s.shoe.Draw())
		s.updatedAt = e.now()
		if games.Bust(s.hand) {
			s.outcome = handOutcome(s)
			e.finish(p, s, models.StatusSettled, 0, out)
		} else {
			out.updates = append(out.updates, s.view())
		}
		view = s.view()
	}); lerr != nil {
		err = lerr
	}
	return view, err
}

// Stand hands the round to the dealer. With a dealer delay the dealer plays
// from a timer, otherwise the hand settles before Stand returns.
func (e *Engine) Stand(p *Player, sessionID string) (models.SessionView, error) {
	var (
		view models.SessionView
		err  error
	)
	if lerr := e.locked(p, func(out *outbox) {
		var s *session
		if s, err = p.blackjack(sessionID); err != nil {
			return
		}
		s.status = models.StatusDealerTurn
		s.updatedAt = e.now()
		if e.opts.DealerDelay > 0 {
			id := s.id
			s.timers = append(s.timers, e.sched.AddTimer(e.opts.DealerDelay, 0, func() {
				e.dealerTurn(p, id)
			}))
			out.updates = append(out.updates, s.view())
		} else {
			e.playDealer(p, s, out)
		}
		view = s.view()
	}); lerr != nil {
		err = lerr
	}
	return view, err
}

func (e *Engine) dealerTurn(p *Player, sessionID string) {
	e.locked(p, func(out *outbox) {
		s, ok := p.sessions[sessionID]
		if !ok || s.status != models.StatusDealerTurn {
			return
		}
		e.playDealer(p, s, out)
	})
}

func (e *Engine) playDealer(p *Player, s *session, out *outbox) models.WagerRecord {
	s.dealer = games.DealerPlay(s.dealer, s.shoe)
	s.outcome = handOutcome(s)
	return e.finish(p, s, models.StatusSettled, games.BlackjackPayout(s.bet.Amount, s.hand, s.dealer), out)
}

func handOutcome(s *session) *models.Outcome {
	return &models.Outcome{
		PlayerTotal: games.HandValue(s.hand),
		DealerTotal: games.HandValue(s.dealer),
	}
}

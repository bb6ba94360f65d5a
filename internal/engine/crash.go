package engine

import (
	"fmt"

	"casino-lobby/internal/games"
	"casino-lobby/internal/models"
)

// crashTick advances a running round by one step. Ticks that arrive after the
// round ended are ignored.
func (e *Engine) crashTick(p *Player, sessionID string) {
	e.locked(p, func(out *outbox) {
		s, ok := p.sessions[sessionID]
		if !ok || s.status != models.StatusInProgress {
			return
		}
		s.round = s.round.Tick()
		s.updatedAt = e.now()

		switch s.round.Status {
		case games.CrashCashedOut:
			e.endCrash(p, s, models.StatusCashedOut, out)
		case games.CrashCrashed:
			e.endCrash(p, s, models.StatusCrashed, out)
		default:
			out.updates = append(out.updates, s.view())
		}
	})
}

// CashOut takes the current multiplier on a running crash round. Once the
// round has crashed it returns ErrSessionNotActive and pays nothing.
func (e *Engine) CashOut(p *Player, sessionID string) (models.WagerRecord, error) {
	var (
		rec models.WagerRecord
		err error
	)
	if lerr := e.locked(p, func(out *outbox) {
		var s *session
		if s, err = p.lookup(sessionID); err != nil {
			return
		}
		if s.game() != models.GameCrash {
			err = fmt.Errorf("%w: %s is a %s session", models.ErrSessionNotActive, s.id, s.game())
			return
		}
		if s.status != models.StatusInProgress {
			err = fmt.Errorf("%w: session %s is %s", models.ErrSessionNotActive, s.id, s.status)
			return
		}

		round, ok := s.round.CashOut()
		s.round = round
		if !ok {
			e.endCrash(p, s, models.StatusCrashed, out)
			err = fmt.Errorf("%w: crashed at %s", models.ErrSessionNotActive, round.Point)
			return
		}
		rec = e.endCrash(p, s, models.StatusCashedOut, out)
	}); lerr != nil {
		err = lerr
	}
	return rec, err
}

func (e *Engine) endCrash(p *Player, s *session, status models.SessionStatus, out *outbox) models.WagerRecord {
	p.pushCrash(s.round.Current)
	s.outcome = &models.Outcome{Multiplier: s.round.Current.Float()}
	return e.finish(p, s, status, s.round.Payout(s.bet.Amount), out)
}

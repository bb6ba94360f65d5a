package engine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"casino-lobby/internal/games"
	"casino-lobby/internal/logger"
	"casino-lobby/internal/models"
)

type credit struct {
	source string
	amount int64
}

// outbox collects side effects while a player is locked. They are dispatched
// by flush once the lock is released.
type outbox struct {
	updates  []models.SessionView
	settled  []models.WagerRecord
	opened   []models.GameID
	closed   []models.GameID
	credits  []credit
	persist  bool
	snapshot *models.PlayerSnapshot
	balance  int64
}

// seal records the player state the side effects carry. Only calls that
// changed something count as activity for idle eviction.
func (e *Engine) seal(p *Player, out *outbox) {
	if out.persist || len(out.updates) > 0 {
		p.lastSeen = e.now()
	}
	if out.persist {
		out.snapshot = p.snapshot()
	}
	out.balance = p.wallet.Balance()
}

func (e *Engine) flush(p *Player, out *outbox) {
	for _, g := range out.opened {
		e.stats.SessionOpened(g)
	}
	for _, v := range out.updates {
		e.cast.BroadcastSessionUpdate(p.id, v)
	}
	for _, c := range out.credits {
		e.stats.Credited(c.source, c.amount)
	}
	for _, rec := range out.settled {
		e.stats.Settled(rec)
		e.cast.BroadcastSettlement(p.id, rec, out.balance)
		logger.Log.Infow("Wager settled",
			"player_id", p.id,
			"session_id", rec.SessionID,
			"game_id", rec.GameID,
			"amount", rec.Amount,
			"payout", rec.Payout,
			"result", rec.Result,
		)
	}
	for _, g := range out.closed {
		e.stats.SessionClosed(g)
	}
}

// locked runs fn with the player locked. The persistence job is queued before
// the lock is released; every other side effect is dispatched after. An
// evicted player is never mutated again.
func (e *Engine) locked(p *Player, fn func(out *outbox)) error {
	var out outbox
	p.mu.Lock()
	if p.evicted {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s was evicted", models.ErrPlayerNotFound, p.id)
	}
	fn(&out)
	e.seal(p, &out)
	if out.snapshot != nil {
		e.mirror.enqueue(mirrorJob{playerID: p.id, snapshot: out.snapshot, records: out.settled})
	}
	p.mu.Unlock()
	e.flush(p, &out)
	return nil
}

// PlaceBet validates and debits a bet and opens its session. Blackjack deals
// the opening hand and crash starts ticking straight away.
func (e *Engine) PlaceBet(p *Player, bet models.Bet) (models.SessionView, error) {
	bet = bet.Clone()
	limits := e.opts.Limits[bet.GameID]
	if err := bet.Validate(limits); err != nil {
		e.stats.BetRejected(bet.GameID, rejectReason(err))
		return models.SessionView{}, err
	}

	var (
		view models.SessionView
		err  error
	)
	if lerr := e.locked(p, func(out *outbox) {
		view, err = e.place(p, bet, out)
	}); lerr != nil {
		err = lerr
	}
	if err != nil {
		e.stats.BetRejected(bet.GameID, rejectReason(err))
		return models.SessionView{}, err
	}
	e.stats.BetPlaced(bet.GameID, bet.Amount)
	return view, nil
}

func (e *Engine) place(p *Player, bet models.Bet, out *outbox) (models.SessionView, error) {
	if s, ok := p.pending[bet.GameID]; ok {
		return models.SessionView{}, fmt.Errorf("%w: %s session %s", models.ErrSessionPending, bet.GameID, s.id)
	}
	if err := p.wallet.Debit(bet.Amount); err != nil {
		return models.SessionView{}, err
	}
	p.progress.RecordWager(bet.Amount)

	now := e.now()
	s := &session{
		id:        models.GenerateSessionID(),
		playerID:  p.id,
		bet:       bet,
		createdAt: now,
		updatedAt: now,
	}

	switch bet.GameID {
	case models.GameBlackjack:
		s.shoe = e.gen.NewShoe()
		s.hand = []games.Card{s.shoe.Draw(), s.shoe.Draw()}
		s.dealer = []games.Card{s.shoe.Draw()}
		s.status = models.StatusPlayerTurn
	case models.GameCrash:
		auto := games.MultiplierFromFloat(bet.Selection.AutoCashout)
		s.round = games.NewCrashRound(e.gen.CrashPoint(), auto)
		s.status = models.StatusInProgress
		id := s.id
		s.timers = append(s.timers, e.sched.AddTimer(e.opts.CrashTick, e.opts.CrashTick, func() {
			e.crashTick(p, id)
		}))
	default:
		s.status = models.StatusBetPlaced
		if e.opts.RevealDelay > 0 {
			id := s.id
			s.timers = append(s.timers, e.sched.AddTimer(e.opts.RevealDelay, 0, func() {
				e.reveal(p, id)
			}))
		}
	}

	p.sessions[s.id] = s
	p.pending[bet.GameID] = s
	out.opened = append(out.opened, bet.GameID)
	out.persist = true
	return s.view(), nil
}

// Settle resolves an instant game bet, or a blackjack hand waiting on the
// dealer. A session settles exactly once; later calls get ErrSessionNotActive.
func (e *Engine) Settle(p *Player, sessionID string) (models.WagerRecord, error) {
	var (
		rec models.WagerRecord
		err error
	)
	if lerr := e.locked(p, func(out *outbox) {
		rec, err = e.settle(p, sessionID, out)
	}); lerr != nil {
		err = lerr
	}
	return rec, err
}

func (e *Engine) settle(p *Player, sessionID string, out *outbox) (models.WagerRecord, error) {
	s, err := p.lookup(sessionID)
	if err != nil {
		return models.WagerRecord{}, err
	}
	if s.status.Terminal() {
		return models.WagerRecord{}, fmt.Errorf("%w: session %s is %s", models.ErrSessionNotActive, s.id, s.status)
	}

	switch {
	case s.game().Instant():
		outcome, payout := e.resolveInstant(s.bet)
		s.outcome = &outcome
		return e.finish(p, s, models.StatusSettled, payout, out), nil
	case s.game() == models.GameBlackjack && s.status == models.StatusDealerTurn:
		return e.playDealer(p, s, out), nil
	}
	return models.WagerRecord{}, fmt.Errorf("%w: %s session %s is %s", models.ErrSessionNotActive, s.game(), s.id, s.status)
}

// reveal is the delayed settlement of an instant game.
func (e *Engine) reveal(p *Player, sessionID string) {
	e.locked(p, func(out *outbox) {
		s, ok := p.sessions[sessionID]
		if !ok || s.status != models.StatusBetPlaced {
			return
		}
		outcome, payout := e.resolveInstant(s.bet)
		s.outcome = &outcome
		e.finish(p, s, models.StatusSettled, payout, out)
	})
}

func (e *Engine) resolveInstant(bet models.Bet) (models.Outcome, int64) {
	sel := bet.Selection
	switch bet.GameID {
	case models.GameDice:
		roll := e.gen.RollDice()
		return models.Outcome{Dice: []int{roll[0], roll[1]}}, games.DicePayout(bet.Amount, sel.Prediction, roll)
	case models.GameRoulette:
		n := e.gen.SpinRoulette()
		return models.Outcome{Number: &n}, games.RoulettePayout(bet.Amount, *sel.Number, n)
	case models.GameSlots:
		reels := e.gen.SpinSlots()
		return models.Outcome{Reels: reels.Strings()}, games.SlotsPayout(bet.Amount, reels)
	case models.GameWheel:
		seg := e.gen.SpinWheel()
		return models.Outcome{Multiplier: float64(games.WheelSegments[seg].Multiplier)}, games.WheelPayout(bet.Amount, seg)
	case models.GameKeno:
		drawn := e.gen.DrawKeno()
		matches := games.KenoMatches(sel.Numbers, drawn)
		return models.Outcome{Drawn: drawn, Matches: matches}, games.KenoPayout(bet.Amount, matches)
	}
	panic(fmt.Sprintf("engine: %s is not an instant game", bet.GameID))
}

// finish moves a session to a terminal status. The status is set before
// anything else so no timer or action can settle the session again.
func (e *Engine) finish(p *Player, s *session, status models.SessionStatus, payout int64, out *outbox) models.WagerRecord {
	s.status = status
	s.updatedAt = e.now()
	e.cancelTimers(s)
	if p.pending[s.game()] == s {
		delete(p.pending, s.game())
	}

	if payout > 0 {
		// Credit only fails on negative amounts.
		_ = p.wallet.Credit(payout)
		out.credits = append(out.credits, credit{source: "payout", amount: payout})
	}

	rec := models.WagerRecord{
		ID:        models.GenerateRecordID(),
		SessionID: s.id,
		GameID:    s.game(),
		Amount:    s.bet.Amount,
		Payout:    payout,
		Result:    models.ResultFor(s.bet.Amount, payout),
		Profit:    payout - s.bet.Amount,
		Timestamp: s.updatedAt,
	}
	p.history.Append(rec)
	s.record = &rec

	out.settled = append(out.settled, rec)
	out.updates = append(out.updates, s.view())
	out.closed = append(out.closed, s.game())
	out.persist = true
	return rec
}

func (e *Engine) cancelTimers(s *session) {
	for _, id := range s.timers {
		e.sched.RemoveTimer(id)
	}
	s.timers = nil
}

// Abandon forfeits a pending session: its timers are cancelled and it is
// recorded as a loss with no payout.
func (e *Engine) Abandon(p *Player, sessionID string) (models.WagerRecord, error) {
	var (
		rec models.WagerRecord
		err error
	)
	if lerr := e.locked(p, func(out *outbox) {
		var s *session
		s, err = p.lookup(sessionID)
		if err != nil {
			return
		}
		if s.status.Terminal() {
			err = fmt.Errorf("%w: session %s is %s", models.ErrSessionNotActive, s.id, s.status)
			return
		}
		rec = e.finish(p, s, models.StatusAbandoned, 0, out)
		logger.Log.Infow("Session abandoned", "player_id", p.id, "session_id", s.id, "game_id", s.game())
	}); lerr != nil {
		err = lerr
	}
	return rec, err
}

// CleanupStale forfeits pending sessions idle for longer than maxAge and
// forgets finished sessions older than that.
func (e *Engine) CleanupStale(maxAge time.Duration) int {
	cutoff := e.now().Add(-maxAge)
	abandoned := 0
	for _, p := range e.lobby.all() {
		e.locked(p, func(out *outbox) {
			for id, s := range p.sessions {
				if !s.updatedAt.Before(cutoff) {
					continue
				}
				if !s.status.Terminal() {
					e.finish(p, s, models.StatusAbandoned, 0, out)
					abandoned++
					logger.Log.Warnw("Stale session abandoned", "player_id", p.id, "session_id", id, "game_id", s.game())
				}
				delete(p.sessions, id)
			}
		})
	}
	return abandoned
}

// Deposit credits the wallet directly. No payment verification happens here.
func (e *Engine) Deposit(p *Player, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: deposit %d", models.ErrInvalidAmount, amount)
	}
	var balance int64
	if err := e.locked(p, func(out *outbox) {
		_ = p.wallet.Credit(amount)
		balance = p.wallet.Balance()
		out.credits = append(out.credits, credit{source: "deposit", amount: amount})
		out.persist = true
	}); err != nil {
		return 0, err
	}
	logger.Log.Infow("Deposit credited", "player_id", p.id, "amount", amount, "balance", balance)
	return balance, nil
}

// ClaimDailyBonus credits the tier-scaled bonus at most once per calendar
// date.
func (e *Engine) ClaimDailyBonus(p *Player, now time.Time) (int64, error) {
	var (
		bonus int64
		err   error
	)
	if lerr := e.locked(p, func(out *outbox) {
		var ok bool
		bonus, ok = p.progress.ClaimDailyBonus(now)
		if !ok {
			err = fmt.Errorf("%w: last claimed %s", models.ErrBonusAlreadyClaimed, p.progress.LastBonusDate())
			return
		}
		_ = p.wallet.Credit(bonus)
		out.credits = append(out.credits, credit{source: "daily_bonus", amount: bonus})
		out.persist = true
	}); lerr != nil {
		err = lerr
	}
	return bonus, err
}

func (p *Player) lookup(sessionID string) (*session, error) {
	s, ok := p.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrSessionNotFound, sessionID)
	}
	return s, nil
}

func (p *Player) pendingSessions() []*session {
	out := make([]*session, 0, len(p.pending))
	for _, s := range p.pending {
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b *session) int { return a.createdAt.Compare(b.createdAt) })
	return out
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, models.ErrInvalidBetAmount):
		return "invalid_amount"
	case errors.Is(err, models.ErrNoSelectionMade):
		return "no_selection"
	case errors.Is(err, models.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, models.ErrUnknownGame):
		return "unknown_game"
	case errors.Is(err, models.ErrSessionPending):
		return "session_pending"
	}
	return "other"
}

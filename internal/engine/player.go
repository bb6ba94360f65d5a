package engine

import (
	"sync"
	"time"

	"casino-lobby/internal/games"
	"casino-lobby/internal/history"
	"casino-lobby/internal/models"
	"casino-lobby/internal/progression"
	"casino-lobby/internal/wallet"
)

const crashHistorySize = 10

// Player is the single owner of a player's credits, tier and history. Every
// read and write of a player's sessions happens with mu held.
type Player struct {
	mu sync.Mutex

	id        string
	createdAt time.Time
	lastSeen  time.Time
	evicted   bool

	wallet   *wallet.Ledger
	progress *progression.Tracker
	history  *history.Ledger

	sessions map[string]*session
	pending  map[models.GameID]*session
	crashes  []games.Multiplier // most recent first
}

func newPlayer(id string, credits int64, loc *time.Location, now time.Time) *Player {
	return &Player{
		id:        id,
		createdAt: now,
		lastSeen:  now,
		wallet:    wallet.NewLedger(credits),
		progress:  progression.NewTracker(loc),
		history:   history.NewLedger(),
		sessions:  make(map[string]*session),
		pending:   make(map[models.GameID]*session),
	}
}

func restorePlayer(snap *models.PlayerSnapshot, loc *time.Location, now time.Time) *Player {
	p := newPlayer(snap.ID, snap.Credits, loc, now)
	p.createdAt = snap.CreatedAt
	p.progress = progression.Restore(loc, snap.TotalWagered, snap.VIPLevel, snap.LastBonusDate)
	p.history = history.Restore(snap.History)
	return p
}

func (p *Player) ID() string { return p.id }

func (p *Player) Balance() int64 { return p.wallet.Balance() }

// snapshot must be called with mu held. History travels separately as wager
// records.
func (p *Player) snapshot() *models.PlayerSnapshot {
	return &models.PlayerSnapshot{
		ID:            p.id,
		Credits:       p.wallet.Balance(),
		TotalWagered:  p.progress.TotalWagered(),
		VIPLevel:      p.progress.Level(),
		LastBonusDate: p.progress.LastBonusDate(),
		CreatedAt:     p.createdAt,
	}
}

func (p *Player) view() models.PlayerView {
	total, level, next := p.progress.View()
	return models.PlayerView{
		ID:            p.id,
		Credits:       p.wallet.Balance(),
		VIPLevel:      level,
		TotalWagered:  total,
		NextTierAt:    next,
		LastBonusDate: p.progress.LastBonusDate(),
		CreatedAt:     p.createdAt,
	}
}

func (p *Player) pushCrash(m games.Multiplier) {
	p.crashes = append([]games.Multiplier{m}, p.crashes...)
	if len(p.crashes) > crashHistorySize {
		p.crashes = p.crashes[:crashHistorySize]
	}
}

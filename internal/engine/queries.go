package engine

import "casino-lobby/internal/models"

func (e *Engine) View(p *Player) models.PlayerView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.view()
}

func (e *Engine) Balance(p *Player) models.BalanceResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return models.BalanceResponse{
		Balance:      p.wallet.Balance(),
		TotalWagered: p.progress.TotalWagered(),
		VIPLevel:     p.progress.Level(),
	}
}

// Active lists the player's unsettled sessions, oldest first.
func (e *Engine) Active(p *Player) []models.SessionView {
	p.mu.Lock()
	defer p.mu.Unlock()

	pending := p.pendingSessions()
	out := make([]models.SessionView, len(pending))
	for i, s := range pending {
		out[i] = s.view()
	}
	return out
}

func (e *Engine) Session(p *Player, sessionID string) (models.SessionView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, err := p.lookup(sessionID)
	if err != nil {
		return models.SessionView{}, err
	}
	return s.view(), nil
}

// History returns up to limit wager records, most recent first.
func (e *Engine) History(p *Player, limit int) []models.WagerRecord {
	return p.history.Recent(limit)
}

func (e *Engine) Stats(p *Player) models.Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.history.Summary()
	s.TotalWagered, s.VIPLevel, s.NextTierAt = p.progress.View()
	return s
}

// CrashHistory returns the multipliers the player's last crash rounds ended
// on, most recent first.
func (e *Engine) CrashHistory(p *Player) []float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]float64, len(p.crashes))
	for i, m := range p.crashes {
		out[i] = m.Float()
	}
	return out
}

// Totals reports the wallet's lifetime debits and credits.
func (e *Engine) Totals(p *Player) (debited, credited int64) {
	return p.wallet.Totals()
}

package games

import (
	"casino-lobby/internal/models"
	"casino-lobby/internal/rng"
)

const (
	Blackjack      = 21
	dealerStandsOn = 17
)

var (
	Suits = []string{"spades", "clubs", "hearts", "diamonds"}
	Ranks = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
)

type Card struct {
	Rank string
	Suit string
}

// Value counts an ace as 11; HandValue reduces aces as needed.
func (c Card) Value() int {
	switch c.Rank {
	case "A":
		return 11
	case "J", "Q", "K", "10":
		return 10
	default:
		return int(c.Rank[0] - '0')
	}
}

func (c Card) View() models.Card {
	return models.Card{Rank: c.Rank, Suit: c.Suit}
}

func NewDeck() []Card {
	deck := make([]Card, 0, len(Suits)*len(Ranks))
	for _, suit := range Suits {
		for _, rank := range Ranks {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// Shuffle is an in-place Fisher-Yates shuffle.
func Shuffle(cards []Card, src rng.Source) {
	for i := len(cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Shoe deals from the top of a shuffled deck. When it runs dry mid-hand a
// fresh 52 card deck is shuffled in, which resets any count a player kept.
type Shoe struct {
	cards      []Card
	next       int
	src        rng.Source
	reshuffles int
}

func NewShoe(src rng.Source) *Shoe {
	s := &Shoe{src: src}
	s.refill()
	return s
}

// NewShoeFromCards deals cards in the given order before falling back to
// shuffled decks drawn from src.
func NewShoeFromCards(src rng.Source, cards ...Card) *Shoe {
	return &Shoe{cards: append([]Card(nil), cards...), src: src}
}

func (s *Shoe) refill() {
	s.cards = NewDeck()
	Shuffle(s.cards, s.src)
	s.next = 0
}

func (s *Shoe) Draw() Card {
	if s.next >= len(s.cards) {
		s.refill()
		s.reshuffles++
	}
	c := s.cards[s.next]
	s.next++
	return c
}

func (s *Shoe) Remaining() int { return len(s.cards) - s.next }

func (s *Shoe) Reshuffles() int { return s.reshuffles }

func HandValue(hand []Card) int {
	total, aces := 0, 0
	for _, c := range hand {
		if c.Rank == "A" {
			aces++
		}
		total += c.Value()
	}
	for total > Blackjack && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func Bust(hand []Card) bool {
	return HandValue(hand) > Blackjack
}

// DealerPlay draws until the dealer total reaches 17.
func DealerPlay(hand []Card, shoe *Shoe) []Card {
	for HandValue(hand) < dealerStandsOn {
		hand = append(hand, shoe.Draw())
	}
	return hand
}

// BlackjackPayout returns 2x on a win, the stake on a push and 0 otherwise.
func BlackjackPayout(bet int64, player, dealer []Card) int64 {
	p, d := HandValue(player), HandValue(dealer)
	switch {
	case p > Blackjack:
		return 0
	case d > Blackjack || p > d:
		return bet * 2
	case p == d:
		return bet
	}
	return 0
}

func CardViews(cards []Card) []models.Card {
	out := make([]models.Card, len(cards))
	for i, c := range cards {
		out[i] = c.View()
	}
	return out
}

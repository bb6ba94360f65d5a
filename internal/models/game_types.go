package models

type GameID string

const (
	GameSlots     GameID = "slots"
	GameRoulette  GameID = "roulette"
	GameDice      GameID = "dice"
	GameBlackjack GameID = "blackjack"
	GameWheel     GameID = "wheel"
	GameKeno      GameID = "keno"
	GameCrash     GameID = "crash"
)

type Category string

const (
	CategorySlots   Category = "slots"
	CategoryTable   Category = "table"
	CategoryInstant Category = "instant"
	CategoryLottery Category = "lottery"
)

type GameInfo struct {
	ID          GameID     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Categories  []Category `json:"categories"`
	MinBet      int64      `json:"min_bet"`
	MaxBet      int64      `json:"max_bet"`
}

// Catalogue lists the lobby in display order. Bet limits are filled in from
// configuration by the engine.
var Catalogue = []GameInfo{
	{ID: GameSlots, Name: "Slots", Description: "Try your luck at our exciting slot machine!", Categories: []Category{CategorySlots}},
	{ID: GameRoulette, Name: "Roulette", Description: "Place your bets on the roulette wheel!", Categories: []Category{CategoryTable}},
	{ID: GameDice, Name: "Dice", Description: "Roll the dice and test your fortune!", Categories: []Category{CategoryInstant}},
	{ID: GameBlackjack, Name: "Blackjack", Description: "Play against the dealer in this classic card game!", Categories: []Category{CategoryTable}},
	{ID: GameWheel, Name: "Wheel of Fortune", Description: "Spin the wheel for massive multipliers!", Categories: []Category{CategoryInstant}},
	{ID: GameKeno, Name: "Keno", Description: "Pick your lucky numbers and win big!", Categories: []Category{CategoryLottery}},
	{ID: GameCrash, Name: "Crash Game", Description: "Cash out before the multiplier crashes!", Categories: []Category{CategoryInstant}},
}

func (g GameID) Valid() bool {
	switch g {
	case GameSlots, GameRoulette, GameDice, GameBlackjack, GameWheel, GameKeno, GameCrash:
		return true
	}
	return false
}

// Instant games resolve in a single settle step.
func (g GameID) Instant() bool {
	switch g {
	case GameSlots, GameRoulette, GameDice, GameWheel, GameKeno:
		return true
	}
	return false
}

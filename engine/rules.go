package engine

const (
	MinPlayers    = 2
	MaxPlayers    = 8
	MaxLogEntries = 256
	MaxGuess      = 9

	// FaceUpCards are set aside, visible, in 2-player rounds.
	FaceUpCards = 3

	// ExtensionThreshold is the roster size above which the extension set is dealt.
	ExtensionThreshold = 4

	// NoPlayer marks an unset player index.
	NoPlayer = -1
)

var baseDeck = []Card{
	Guard, Guard, Guard, Guard, Guard,
	Priest, Priest,
	Baron, Baron,
	Handmaid, Handmaid,
	Prince, Prince,
	King, Countess, Princess,
}

var extensionDeck = []Card{
	Guard, Guard, Guard,
	Assassin, Jester,
	Cardinal, Cardinal,
	Baroness, Baroness,
	Sycophant, Sycophant,
	Count, Count,
	Constable, DowagerQueen, Bishop,
}

// FullDeck returns the unshuffled deck composition for a roster of n players.
func FullDeck(n int) []Card {
	deck := make([]Card, 0, len(baseDeck)+len(extensionDeck))
	deck = append(deck, baseDeck...)
	if n > ExtensionThreshold {
		deck = append(deck, extensionDeck...)
	}
	return deck
}

// WinningScore returns the affection tokens needed to win with n players.
func WinningScore(n int) int {
	switch {
	case n <= 2:
		return 7
	case n == 3:
		return 5
	default:
		return 4
	}
}

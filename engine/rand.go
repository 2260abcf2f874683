package engine

import "math/rand/v2"

// Source is the single randomness dependency of the engine: shuffling and the
// deck-exhaustion tie-break both draw from it. *rand.Rand satisfies it.
type Source interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// NewSource returns a PCG-backed Source for the given seed.
func NewSource(seed uint64) Source {
	if seed == 0 {
		seed = 1
	}
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeefcafe1234))
}

// shuffle performs a Fisher-Yates shuffle of cards in place.
func shuffle(src Source, cards []Card) {
	for i := len(cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

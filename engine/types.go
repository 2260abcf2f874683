package engine

import (
	"encoding/json"
	"fmt"
)

// Card identifies one of the sixteen card behaviors. The numeric values are the
// wire identifiers shared with clients; the gap at 9 separates the base set
// from the extension set.
type Card uint8

// NoCard represents the absence of a card.
const NoCard Card = 0

// Base set.
const (
	Guard Card = iota + 1
	Priest
	Baron
	Handmaid
	Prince
	King
	Countess
	Princess
)

// Extension set, dealt only when more than four players are seated.
const (
	Assassin Card = iota + 10
	Jester
	Cardinal
	Baroness
	Sycophant
	Count
	Constable
	DowagerQueen
	Bishop
)

// ChoiceKind describes the secondary choice a card requires beyond its targets.
type ChoiceKind uint8

const (
	ChoiceNone           ChoiceKind = iota // 0
	ChoiceCardNumber                       // 1: a guessed card value
	ChoiceSelectedPlayer                   // 2: one of the chosen targets
)

// Shape is the static targeting metadata of a card.
type Shape struct {
	MinTargets    int
	MaxTargets    int
	CanTargetSelf bool
	Choice        ChoiceKind
}

// cardInfo is one row of the catalog.
type cardInfo struct {
	name  string
	value int
	shape Shape
}

// catalog is indexed by Card. Rows for unused identifiers are zero.
var catalog = [Bishop + 1]cardInfo{
	Guard:        {"Guard", 1, Shape{1, 1, false, ChoiceCardNumber}},
	Priest:       {"Priest", 2, Shape{1, 1, false, ChoiceNone}},
	Baron:        {"Baron", 3, Shape{1, 1, false, ChoiceNone}},
	Handmaid:     {"Handmaid", 4, Shape{0, 0, false, ChoiceNone}},
	Prince:       {"Prince", 5, Shape{1, 1, true, ChoiceNone}},
	King:         {"King", 6, Shape{1, 1, false, ChoiceNone}},
	Countess:     {"Countess", 7, Shape{0, 0, false, ChoiceNone}},
	Princess:     {"Princess", 8, Shape{0, 0, false, ChoiceNone}},
	Assassin:     {"Assassin", 0, Shape{0, 0, false, ChoiceNone}},
	Jester:       {"Jester", 0, Shape{1, 1, false, ChoiceNone}},
	Cardinal:     {"Cardinal", 2, Shape{2, 2, true, ChoiceSelectedPlayer}},
	Baroness:     {"Baroness", 3, Shape{1, 2, false, ChoiceNone}},
	Sycophant:    {"Sycophant", 4, Shape{1, 1, true, ChoiceNone}},
	Count:        {"Count", 5, Shape{0, 0, false, ChoiceNone}},
	Constable:    {"Constable", 6, Shape{0, 0, false, ChoiceNone}},
	DowagerQueen: {"Dowager Queen", 7, Shape{1, 1, false, ChoiceNone}},
	Bishop:       {"Bishop", 9, Shape{1, 1, false, ChoiceCardNumber}},
}

// AllCards lists every valid card in identifier order.
var AllCards = []Card{
	Guard, Priest, Baron, Handmaid, Prince, King, Countess, Princess,
	Assassin, Jester, Cardinal, Baroness, Sycophant, Count, Constable, DowagerQueen, Bishop,
}

// Valid reports whether c is a known card identifier.
func (c Card) Valid() bool {
	return c != NoCard && int(c) < len(catalog) && catalog[c].name != ""
}

// Name returns the display name of the card.
func (c Card) Name() string {
	if !c.Valid() {
		return fmt.Sprintf("Card(%d)", uint8(c))
	}
	return catalog[c].name
}

func (c Card) String() string { return c.Name() }

// Value returns the rank compared by Baron, Dowager Queen, Guard and Bishop
// guesses and end-of-round scoring. Unknown cards are worth 0.
func (c Card) Value() int {
	if !c.Valid() {
		return 0
	}
	return catalog[c].value
}

// Shape returns the targeting metadata for the card.
func (c Card) Shape() Shape {
	if !c.Valid() {
		return Shape{}
	}
	return catalog[c].shape
}

// IsExtension reports whether the card belongs to the 5+ player extension set.
func (c Card) IsExtension() bool { return c >= Assassin && c.Valid() }

// MarshalJSON encodes the card as its numeric identifier.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint8(c))
}

// UnmarshalJSON decodes a numeric identifier, rejecting unknown cards.
func (c *Card) UnmarshalJSON(data []byte) error {
	var v uint8
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("card: %w", err)
	}
	if v != 0 && !Card(v).Valid() {
		return fmt.Errorf("card: unknown identifier %d", v)
	}
	*c = Card(v)
	return nil
}

// ---------------------------------------------------------------------------
// Game states
// ---------------------------------------------------------------------------

// State is the coarse lifecycle state of a game.
type State uint8

const (
	StateLobby            State = iota // 0: players may join and leave
	StateRoundActive                   // 1: normal turn loop
	StateAwaitingDecision              // 2: Bishop target must decide whether to discard
	StateRoundOver                     // 3: transient, between scoring and the next deal
	StateGameOver                      // 4
)

func (s State) String() string {
	switch s {
	case StateLobby:
		return "lobby"
	case StateRoundActive:
		return "round_active"
	case StateAwaitingDecision:
		return "awaiting_decision"
	case StateRoundOver:
		return "round_over"
	case StateGameOver:
		return "game_over"
	}
	return "unknown"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome is the result of a MakeChoice request.
type Outcome uint8

const (
	Rejected      Outcome = iota // 0: no state change
	Applied                      // 1
	AutoDiscarded                // 2: no legal targets, card discarded without effect
)

// Accepted reports whether the request changed the game state.
func (o Outcome) Accepted() bool { return o != Rejected }

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case Applied:
		return "applied"
	case AutoDiscarded:
		return "auto_discarded"
	}
	return "unknown"
}

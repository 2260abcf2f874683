package engine

// EventKind names a structured game log entry. Presentation is left to clients.
type EventKind string

const (
	EventGameStarted         EventKind = "game_started"
	EventRoundStarted        EventKind = "round_started"
	EventCardPlayed          EventKind = "card_played"
	EventNoLegalTargets      EventKind = "no_legal_targets"      // card discarded without effect
	EventGuessed             EventKind = "guessed"               // Guard or Bishop guess
	EventGuardHit            EventKind = "guard_hit"             // Target had the guessed card
	EventAssassinCounter     EventKind = "assassin_counter"      // Target held the Assassin
	EventComparisonLoss      EventKind = "comparison_loss"       // Baron or Dowager Queen knockout
	EventPrincessDiscarded   EventKind = "princess_discarded"    // Player discarded the Princess
	EventLookedAtHand        EventKind = "looked_at_hand"        // Cardinal follow-up look
	EventBishopHit           EventKind = "bishop_hit"            // Bishop guessed right
	EventBishopDecision      EventKind = "bishop_decision"       // Target chose whether to discard
	EventDisconnectedOut     EventKind = "disconnected_out"      // Knocked out for leaving
	EventConstableBonus      EventKind = "constable_bonus"       // Constable in discards on knockout
	EventLastPlayerStanding  EventKind = "last_player_standing"  // Round won by elimination
	EventJesterBonus         EventKind = "jester_bonus"          // Jester claim paid out
	EventDeckExhausted       EventKind = "deck_exhausted"        // Final hands revealed
	EventPrincessBeatsBishop EventKind = "princess_beats_bishop"
	EventHighestValue        EventKind = "highest_value"
	EventTiedHighest         EventKind = "tied_highest"
	EventTieRestart          EventKind = "tie_restart"
	EventGameOver            EventKind = "game_over"
	EventGameAbandoned       EventKind = "game_abandoned"
)

// FinalValue is one surviving player's hand at deck exhaustion.
type FinalValue struct {
	Player  int  `json:"player"`
	Card    Card `json:"card"`
	Value   int  `json:"value"`
	Counts  int  `json:"counts"`
	Total   int  `json:"total"`
	CardSum int  `json:"cardSum"`
}

// Event is a structured log entry. Player and Target are NoPlayer when unused.
// Card is only set when its identity is public.
type Event struct {
	Kind    EventKind    `json:"kind"`
	Player  int          `json:"player"`
	Target  int          `json:"target"`
	Card    Card         `json:"card,omitempty"`
	Value   int          `json:"value,omitempty"`
	Targets []int        `json:"targets,omitempty"`
	Players []int        `json:"players,omitempty"`
	Finals  []FinalValue `json:"finals,omitempty"`
	// ShowSums is set on EventDeckExhausted when the discard sums decided a tie.
	ShowSums bool `json:"showSums,omitempty"`
}

// EventLog keeps the most recent MaxLogEntries events in order.
type EventLog struct {
	entries []Event
}

// Append records ev, dropping the oldest entry when full.
func (l *EventLog) Append(ev Event) {
	if len(l.entries) >= MaxLogEntries {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, ev)
}

// Entries returns a copy of the recorded events, oldest first.
func (l *EventLog) Entries() []Event {
	out := make([]Event, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of recorded events.
func (l *EventLog) Len() int { return len(l.entries) }

// Last returns the most recent event and whether one exists.
func (l *EventLog) Last() (Event, bool) {
	if len(l.entries) == 0 {
		return Event{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Reset clears the log.
func (l *EventLog) Reset() { l.entries = l.entries[:0] }

// logEvent appends ev with unset player fields defaulted.
func (g *Game) logEvent(kind EventKind, player, target int, mods ...func(*Event)) {
	ev := Event{Kind: kind, Player: player, Target: target}
	for _, m := range mods {
		m(&ev)
	}
	g.Log.Append(ev)
}

func withCard(c Card) func(*Event) { return func(e *Event) { e.Card = c } }
func withValue(v int) func(*Event) { return func(e *Event) { e.Value = v } }
func withTargets(t []int) func(*Event) { return func(e *Event) { e.Targets = append([]int(nil), t...) } }
func withPlayers(p []int) func(*Event) { return func(e *Event) { e.Players = append([]int(nil), p...) } }

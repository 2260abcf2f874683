package engine

// PlayerView is one seat as seen by a particular viewer.
type PlayerView struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
	Out       bool   `json:"out"`
	Protected bool   `json:"protected"`
	Played    []Card `json:"played"`
	HandSize  int    `json:"handSize"`
	// Hand is the viewer's own hand, or what the viewer last learned of
	// this seat's hand. Known distinguishes the two.
	Hand   []Card `json:"hand,omitempty"`
	Known  bool   `json:"known,omitempty"`
	Jester int    `json:"jester"`
}

// View is the redacted game state sent to one player.
type View struct {
	Self          int          `json:"self"`
	State         State        `json:"state"`
	Round         int          `json:"round"`
	WinningScore  int          `json:"winningScore"`
	Active        int          `json:"active"`
	BishopDecider int          `json:"bishopDecider"`
	ForcedTarget  int          `json:"forcedTarget"`
	DeckSize      int          `json:"deckSize"`
	FaceUp        []Card       `json:"faceUp,omitempty"`
	Players       []PlayerView `json:"players"`
	Log           []Event      `json:"log"`
}

// IndividualView pairs a view with the session it belongs to. Session is
// empty for disconnected seats.
type IndividualView struct {
	Session string `json:"session"`
	Player  int    `json:"player"`
	View    View   `json:"view"`
}

// ViewFor returns the state visible to seat self: public information, the
// viewer's own hand and the viewer's knowledge of other hands.
func (g *Game) ViewFor(self int) View {
	v := View{
		Self:          self,
		State:         g.State(),
		Round:         g.Round,
		WinningScore:  g.WinningScore,
		Active:        g.Active,
		BishopDecider: g.BishopDecider,
		ForcedTarget:  g.ForcedTarget,
		DeckSize:      len(g.Deck),
		FaceUp:        append([]Card(nil), g.FaceUp...),
		Players:       make([]PlayerView, len(g.Players)),
		Log:           g.Log.Entries(),
	}
	var viewer *Player
	if self >= 0 && self < len(g.Players) {
		viewer = g.Players[self]
	}
	for i, p := range g.Players {
		pv := PlayerView{
			Index:     i,
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected(),
			Out:       p.Out,
			Protected: !p.Out && p.Protected(),
			Played:    append([]Card(nil), p.Played...),
			HandSize:  len(p.Hand),
			Jester:    p.Jester,
		}
		switch {
		case i == self:
			pv.Hand = append([]Card(nil), p.Hand...)
		case viewer != nil && len(viewer.Known[i]) > 0:
			pv.Hand = append([]Card(nil), viewer.Known[i]...)
			pv.Known = true
		}
		v.Players[i] = pv
	}
	return v
}

// IndividualViews returns one view per seat, in seat order.
func (g *Game) IndividualViews() []IndividualView {
	out := make([]IndividualView, len(g.Players))
	for i, p := range g.Players {
		out[i] = IndividualView{Session: p.Session, Player: i, View: g.ViewFor(i)}
	}
	return out
}

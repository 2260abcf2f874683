package engine

import (
	"errors"
	"slices"
	"testing"
)

func TestEffectsCoverCatalog(t *testing.T) {
	for _, c := range AllCards {
		if effects[c] == nil {
			t.Errorf("%s has no effect handler", c)
		}
	}
}

// Two players, deterministic deck: a wrong Guard guess knocks nobody out and
// the turn passes normally.
func TestGuardWrongGuessTwoPlayers(t *testing.T) {
	g := rig(t, 2, [][]Card{{Guard, Handmaid}, {Priest}}, Baron, Countess, King)
	if out := play(t, g, Guard, []int{1}, num(5)); out != Applied {
		t.Fatalf("outcome = %s, want applied", out)
	}
	if g.Players[1].Out {
		t.Fatal("player 1 knocked out by a wrong guess")
	}
	if g.Active != 1 {
		t.Errorf("Active = %d, want 1", g.Active)
	}
	if !slices.Equal(g.Players[1].Hand, []Card{Priest, King}) {
		t.Errorf("player 1 hand = %v, want [Priest King]", g.Players[1].Hand)
	}
	if !slices.Equal(g.Players[0].Played, []Card{Guard}) {
		t.Errorf("player 0 played = %v", g.Players[0].Played)
	}
}

func TestGuardHit(t *testing.T) {
	g := rig(t, 3, [][]Card{{Guard, Priest}, {Baron}, {Handmaid}}, Guard, Guard)
	play(t, g, Guard, []int{1}, num(3))
	if !g.Players[1].Out {
		t.Fatal("correct guess did not knock out the target")
	}
	if !slices.Equal(g.Players[1].Played, []Card{Baron}) {
		t.Errorf("knocked out player's discards = %v, want [Baron]", g.Players[1].Played)
	}
	if g.Active != 2 {
		t.Errorf("Active = %d, want 2", g.Active)
	}
	if !hasEvent(g, EventGuardHit) {
		t.Error("missing guard_hit event")
	}
}

func TestGuardAgainstAssassin(t *testing.T) {
	for _, guess := range []int{0, 1, 5, 9} {
		g := rig(t, 5, [][]Card{{Guard, Priest}, {Assassin}, {Baron}}, Guard, Count, Prince)
		play(t, g, Guard, []int{1}, num(guess))
		if !g.Players[0].Out {
			t.Errorf("guess %d: guesser survived the Assassin", guess)
		}
		if g.Players[1].Out {
			t.Errorf("guess %d: Assassin holder knocked out", guess)
		}
		// The Assassin holder redraws, then draws again for their turn.
		if !slices.Equal(g.Players[1].Played, []Card{Assassin}) || !slices.Equal(g.Players[1].Hand, []Card{Prince, Count}) {
			t.Errorf("guess %d: assassin holder played=%v hand=%v", guess, g.Players[1].Played, g.Players[1].Hand)
		}
		if g.Active != 1 {
			t.Errorf("guess %d: Active = %d, want 1", guess, g.Active)
		}
	}
}

func TestPriestReveals(t *testing.T) {
	g := rig(t, 3, [][]Card{{Priest, Guard}, {Countess}, {Baron}}, Guard, Guard)
	play(t, g, Priest, []int{1}, nil)
	if !slices.Equal(g.Players[0].Known[1], []Card{Countess}) {
		t.Errorf("Known[1] = %v, want [Countess]", g.Players[0].Known[1])
	}
	if len(g.Players[2].Known[1]) != 0 {
		t.Errorf("bystander learned %v", g.Players[2].Known[1])
	}
	v := g.ViewFor(0)
	if !v.Players[1].Known || !slices.Equal(v.Players[1].Hand, []Card{Countess}) {
		t.Errorf("view of player 1 = %+v", v.Players[1])
	}
}

func TestComparisonsAreOpposites(t *testing.T) {
	// Active holds value 3 after playing, target holds value 5.
	baron := rig(t, 5, [][]Card{{Baron, Baron}, {Prince}, {Guard}}, Guard, Guard)
	play(t, baron, Baron, []int{1}, nil)
	if !baron.Players[0].Out || baron.Players[1].Out {
		t.Errorf("Baron: out = [%v %v], want the 3 holder out", baron.Players[0].Out, baron.Players[1].Out)
	}

	dowager := rig(t, 5, [][]Card{{DowagerQueen, Baron}, {Prince}, {Guard}}, Guard, Guard)
	play(t, dowager, DowagerQueen, []int{1}, nil)
	if dowager.Players[0].Out || !dowager.Players[1].Out {
		t.Errorf("Dowager Queen: out = [%v %v], want the 5 holder out", dowager.Players[0].Out, dowager.Players[1].Out)
	}
	if !hasEvent(dowager, EventComparisonLoss) {
		t.Error("missing comparison_loss event")
	}
}

func TestComparisonTie(t *testing.T) {
	g := rig(t, 3, [][]Card{{Baron, King}, {King}, {Guard}}, Guard, Guard)
	play(t, g, Baron, []int{1}, nil)
	if g.Players[0].Out || g.Players[1].Out {
		t.Error("tied comparison knocked someone out")
	}
	if !slices.Equal(g.Players[0].Known[1], []Card{King}) || !slices.Equal(g.Players[1].Known[0], []Card{King}) {
		t.Error("comparison did not reveal hands to both players")
	}
}

func TestPrince(t *testing.T) {
	g := rig(t, 3, [][]Card{{Prince, Guard}, {Baron}, {Priest}}, Guard, Handmaid, Countess)
	play(t, g, Prince, []int{1}, nil)
	if !slices.Equal(g.Players[1].Played, []Card{Baron}) || g.Players[1].Hand[0] != Countess {
		t.Errorf("target played=%v hand=%v", g.Players[1].Played, g.Players[1].Hand)
	}

	g = rig(t, 3, [][]Card{{Prince, Guard}, {Princess}, {Priest}}, Guard, Guard)
	deck := len(g.Deck)
	play(t, g, Prince, []int{1}, nil)
	if !g.Players[1].Out {
		t.Error("discarding the Princess did not knock out")
	}
	if len(g.Deck) != deck-1 {
		t.Errorf("deck = %d, want only the next turn's draw taken", len(g.Deck))
	}
}

func TestPrinceDrawsFaceDownWhenDeckEmpty(t *testing.T) {
	g := rig(t, 3, [][]Card{{Prince, Guard}, {Baron}, {Priest}})
	g.FaceDown = Count
	play(t, g, Prince, []int{1}, nil)

	var finals []FinalValue
	for _, e := range g.Log.Entries() {
		if e.Kind == EventDeckExhausted {
			finals = e.Finals
		}
	}
	if len(finals) != 3 {
		t.Fatalf("finals = %v, want three surviving hands", finals)
	}
	if finals[0].Player != 1 || finals[0].Card != Count {
		t.Errorf("top final = %+v, want player 1 holding the face-down Count", finals[0])
	}
	if g.Players[1].Score != 1 {
		t.Errorf("player 1 score = %d, want 1", g.Players[1].Score)
	}
}

func TestPrincessDiscardKnocksOut(t *testing.T) {
	g := rig(t, 3, [][]Card{{Princess, Guard}, {Baron}, {Priest}}, Guard, Guard)
	play(t, g, Princess, nil, nil)
	if !g.Players[0].Out {
		t.Fatal("playing the Princess did not knock out")
	}
	if !hasEvent(g, EventPrincessDiscarded) {
		t.Error("missing princess_discarded event")
	}
}

func TestKingSwapsKnowledge(t *testing.T) {
	g := rig(t, 3, [][]Card{{King, Guard}, {Baron}, {Priest}}, Guard, Guard)
	g.Players[2].Known[1] = []Card{Baron}
	g.Players[2].Known[0] = []Card{Guard}

	play(t, g, King, []int{1}, nil)

	if !slices.Equal(g.Players[0].Hand, []Card{Baron}) || g.Players[1].Hand[0] != Guard {
		t.Fatalf("hands = %v %v", g.Players[0].Hand, g.Players[1].Hand)
	}
	if !slices.Equal(g.Players[0].Known[1], []Card{Guard}) || !slices.Equal(g.Players[1].Known[0], []Card{Baron}) {
		t.Errorf("swap partners do not know each other: %v %v", g.Players[0].Known[1], g.Players[1].Known[0])
	}
	if !slices.Equal(g.Players[2].Known[0], []Card{Baron}) || !slices.Equal(g.Players[2].Known[1], []Card{Guard}) {
		t.Errorf("bystander knowledge not carried with the hands: %v", g.Players[2].Known)
	}
	if len(g.Players[0].Known[0]) != 0 || len(g.Players[1].Known[1]) != 0 {
		t.Error("self-knowledge left behind by the swap")
	}
}

func TestKnowledgeStrippedOnDiscard(t *testing.T) {
	g := rig(t, 3, [][]Card{{Priest, Guard}, {Baron}, {Prince}}, Guard, Guard, Guard, Guard, Handmaid)
	play(t, g, Priest, []int{2}, nil)
	if !slices.Equal(g.Players[0].Known[2], []Card{Prince}) {
		t.Fatalf("Known[2] = %v", g.Players[0].Known[2])
	}
	// Player 1 plays the Handmaid they drew; player 2 draws and plays Prince.
	play(t, g, Handmaid, nil, nil)
	play(t, g, Prince, []int{2}, nil)
	if len(g.Players[0].Known[2]) != 0 {
		t.Errorf("discarded card still known: %v", g.Players[0].Known[2])
	}
}

func TestJesterClaim(t *testing.T) {
	g := rig(t, 5, [][]Card{{Jester, Guard}, {Baron}}, Countess, Princess)
	play(t, g, Jester, []int{1}, nil)
	if g.Players[1].Jester != 0 {
		t.Fatalf("Jester claim = %d, want 0", g.Players[1].Jester)
	}
	// Player 1 draws the Princess and wins the comparison against the Guard.
	play(t, g, Baron, []int{0}, nil)
	if g.Players[1].Score != 1 || g.Players[0].Score != 1 {
		t.Errorf("scores = %d %d, want 1 1", g.Players[0].Score, g.Players[1].Score)
	}
	if !hasEvent(g, EventJesterBonus) {
		t.Error("missing jester_bonus event")
	}
}

func TestCardinal(t *testing.T) {
	g := rig(t, 5, [][]Card{{Cardinal, Guard}, {Prince}, {Baron}, {Priest}}, Guard, Guard)
	play(t, g, Cardinal, []int{1, 2}, num(1))
	if g.Players[1].Hand[0] != Baron || !slices.Equal(g.Players[2].Hand, []Card{Prince}) {
		t.Fatalf("hands = %v %v", g.Players[1].Hand, g.Players[2].Hand)
	}
	if !slices.Equal(g.Players[0].Known[1], []Card{Baron}) {
		t.Errorf("player 0 Known[1] = %v, want [Baron]", g.Players[0].Known[1])
	}
	if len(g.Players[0].Known[2]) != 0 {
		t.Errorf("player 0 saw the unselected hand: %v", g.Players[0].Known[2])
	}
	if !slices.Equal(g.Players[1].Known[2], []Card{Prince}) || !slices.Equal(g.Players[2].Known[1], []Card{Baron}) {
		t.Error("swapped players do not know each other's hands")
	}
}

func TestBaronessRevealsBoth(t *testing.T) {
	g := rig(t, 5, [][]Card{{Baroness, Guard}, {Prince}, {Baron}, {Priest}}, Guard, Guard)
	play(t, g, Baroness, []int{1, 3}, nil)
	if !slices.Equal(g.Players[0].Known[1], []Card{Prince}) || !slices.Equal(g.Players[0].Known[3], []Card{Priest}) {
		t.Errorf("Known = %v", g.Players[0].Known)
	}
}

func TestSycophantForcesNextTarget(t *testing.T) {
	g := rig(t, 5, [][]Card{{Sycophant, Guard}, {Priest}, {Baron}}, Guard, Guard)
	play(t, g, Sycophant, []int{2}, nil)
	if g.ForcedTarget != 2 {
		t.Fatalf("ForcedTarget = %d, want 2", g.ForcedTarget)
	}
	if _, err := g.MakeChoice(sess(1), Priest, []int{0}, nil); !errors.Is(err, ErrForcedTarget) {
		t.Fatalf("ignoring the Sycophant: %v", err)
	}
	play(t, g, Priest, []int{2}, nil)
	if g.ForcedTarget != NoPlayer {
		t.Error("ForcedTarget not cleared after the next play")
	}
}

func TestConstableBonus(t *testing.T) {
	g := rig(t, 5, [][]Card{{Guard, Priest}, {Baron}, {Prince}}, Guard, Guard)
	g.Players[1].Played = []Card{Constable}
	play(t, g, Guard, []int{1}, num(3))
	if g.Players[1].Score != 1 {
		t.Errorf("Constable holder score = %d, want 1", g.Players[1].Score)
	}
	if !hasEvent(g, EventConstableBonus) {
		t.Error("missing constable_bonus event")
	}
}

// Four players, winning score 4: the Bishop's point ends the game before the
// target is asked to decide anything.
func TestBishopEndsGame(t *testing.T) {
	g := rig(t, 4, [][]Card{{Bishop, Guard}, {Baron}, {Prince}, {Priest}}, Guard, Guard)
	if g.WinningScore != 4 {
		t.Fatalf("winning score = %d, want 4", g.WinningScore)
	}
	g.Players[0].Score = 3
	play(t, g, Bishop, []int{1}, num(3))
	if g.State() != StateGameOver {
		t.Fatalf("State = %s, want game_over", g.State())
	}
	if g.BishopDecider != NoPlayer {
		t.Error("decision offered after the game ended")
	}
	if g.Winner() != 0 || g.Players[0].Score != 4 {
		t.Errorf("winner = %d score = %d", g.Winner(), g.Players[0].Score)
	}
	if ev, _ := g.Log.Last(); ev.Kind != EventGameOver {
		t.Errorf("last event = %s, want game_over", ev.Kind)
	}
	if err := g.MakeBishopChoice(sess(1), true); !errors.Is(err, ErrNotInProgress) {
		t.Errorf("MakeBishopChoice after game over: %v", err)
	}
}

func TestBishopDecision(t *testing.T) {
	for _, discard := range []bool{false, true} {
		g := rig(t, 5, [][]Card{{Bishop, Guard}, {Baron}, {Prince}}, Guard, Handmaid, Countess)
		play(t, g, Bishop, []int{1}, num(3))
		if g.Players[0].Score != 1 {
			t.Fatalf("Bishop score = %d, want 1", g.Players[0].Score)
		}
		if g.State() != StateAwaitingDecision || g.BishopDecider != 1 {
			t.Fatalf("State = %s decider = %d", g.State(), g.BishopDecider)
		}
		if _, err := g.MakeChoice(sess(0), Guard, []int{1}, num(1)); !errors.Is(err, ErrAwaitingDecision) {
			t.Errorf("play during decision: %v", err)
		}
		if err := g.MakeBishopChoice(sess(2), discard); !errors.Is(err, ErrNotDecider) {
			t.Errorf("wrong decider: %v", err)
		}
		if err := g.MakeBishopChoice(sess(1), discard); err != nil {
			t.Fatalf("MakeBishopChoice: %v", err)
		}
		// The decider is also next to act and draws for their turn.
		want := []Card{Baron, Countess}
		if discard {
			want = []Card{Countess, Handmaid}
		}
		if !slices.Equal(g.Players[1].Hand, want) {
			t.Errorf("discard=%v: decider hand = %v, want %v", discard, g.Players[1].Hand, want)
		}
		if g.Active != 1 || g.State() != StateRoundActive {
			t.Errorf("discard=%v: Active = %d State = %s", discard, g.Active, g.State())
		}
	}
}

func TestBishopDeciderLeaving(t *testing.T) {
	g := rig(t, 5, [][]Card{{Bishop, Guard}, {Baron}, {Prince}}, Guard, Handmaid)
	play(t, g, Bishop, []int{1}, num(3))
	g.RemovePlayer(sess(1))
	if g.BishopDecider != NoPlayer {
		t.Fatal("decision still pending after the decider left")
	}
	if !g.Players[1].Out || g.Active != 2 {
		t.Errorf("out=%v Active=%d, want decider out and player 2 active", g.Players[1].Out, g.Active)
	}
}

func TestBishopMiss(t *testing.T) {
	g := rig(t, 5, [][]Card{{Bishop, Guard}, {Baron}, {Prince}}, Guard, Guard)
	play(t, g, Bishop, []int{1}, num(4))
	if g.Players[0].Score != 0 || g.BishopDecider != NoPlayer || g.Active != 1 {
		t.Errorf("score=%d decider=%d active=%d", g.Players[0].Score, g.BishopDecider, g.Active)
	}
}

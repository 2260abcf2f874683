package engine

// Full-game tests driven only through the public API: AddPlayer, StartGame,
// Validate, MakeChoice, MakeBishopChoice and RemovePlayer.

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"
)

const maxStepsPerGame = 5000

// legalPlays enumerates every play the active player could make. Target
// lists longer than the card allows are skipped.
func legalPlays(g *Game) []Play {
	n := len(g.Players)
	targetSets := [][]int{nil}
	for a := 0; a < n; a++ {
		targetSets = append(targetSets, []int{a})
		for b := 0; b < n; b++ {
			if b != a {
				targetSets = append(targetSets, []int{a, b})
			}
		}
	}

	var out []Play
	hand := slices.Compact(slices.Sorted(slices.Values(g.Players[g.Active].Hand)))
	for _, c := range hand {
		shape := c.Shape()
		secondaries := []*int{nil}
		switch shape.Choice {
		case ChoiceCardNumber:
			for v := 0; v <= MaxGuess; v++ {
				secondaries = append(secondaries, num(v))
			}
		case ChoiceSelectedPlayer:
			for v := 0; v < n; v++ {
				secondaries = append(secondaries, num(v))
			}
		}
		for _, ts := range targetSets {
			if len(ts) > shape.MaxTargets {
				continue
			}
			for _, sec := range secondaries {
				p := Play{Card: c, Targets: ts, Secondary: sec}
				if _, err := g.Validate(sess(g.Active), p); err == nil {
					out = append(out, p)
				}
			}
		}
	}
	return out
}

// checkInvariants verifies card conservation and hand sizes mid-round.
func checkInvariants(t *testing.T, g *Game, label string) {
	t.Helper()
	state := g.State()
	if state != StateRoundActive && state != StateAwaitingDecision {
		return
	}

	all := slices.Clone(g.Deck)
	all = append(all, g.FaceUp...)
	if g.FaceDown != NoCard {
		all = append(all, g.FaceDown)
	}
	twoCard := 0
	for i, p := range g.Players {
		all = append(all, p.Hand...)
		all = append(all, p.Played...)
		switch {
		case len(p.Hand) > 2:
			t.Errorf("%s: player %d holds %d cards", label, i, len(p.Hand))
		case len(p.Hand) == 2:
			twoCard++
			if i != g.Active || state != StateRoundActive {
				t.Errorf("%s: player %d holds two cards out of turn", label, i)
			}
		case p.Out && len(p.Hand) != 0:
			t.Errorf("%s: knocked out player %d still holds %v", label, i, p.Hand)
		case !p.Out && len(p.Hand) == 0:
			t.Errorf("%s: player %d in the round with an empty hand", label, i)
		}
	}
	if state == StateRoundActive && twoCard != 1 {
		t.Errorf("%s: %d two-card hands, want exactly the active player", label, twoCard)
	}

	want := FullDeck(len(g.Players))
	slices.Sort(all)
	slices.Sort(want)
	if !slices.Equal(all, want) {
		t.Errorf("%s: card conservation broken:\n got %v\nwant %v", label, all, want)
	}
}

// playRandomGame plays legal moves chosen at random until the game ends.
// With leaveAt >= 0, seat n-1 disconnects at that step.
func playRandomGame(t *testing.T, n int, seed uint64, leaveAt int) *Game {
	t.Helper()
	g := NewGame(NewSource(seed))
	for i := 0; i < n; i++ {
		if _, err := g.AddPlayer(sess(i), fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("AddPlayer: %v", err)
		}
	}
	if !g.StartGame() {
		t.Fatal("StartGame returned false")
	}
	pick := rand.New(rand.NewPCG(seed, 99))

	for step := 0; step < maxStepsPerGame && g.InProgress(); step++ {
		label := fmt.Sprintf("n=%d seed=%d step=%d", n, seed, step)
		checkInvariants(t, g, label)
		if t.Failed() {
			return g
		}
		if step == leaveAt {
			g.RemovePlayer(sess(n - 1))
			continue
		}
		if d := g.BishopDecider; d != NoPlayer {
			if err := g.MakeBishopChoice(sess(d), pick.IntN(2) == 0); err != nil {
				t.Fatalf("%s: MakeBishopChoice: %v", label, err)
			}
			continue
		}
		plays := legalPlays(g)
		if len(plays) == 0 {
			t.Fatalf("%s: no legal play for hand %v", label, g.Players[g.Active].Hand)
		}
		p := plays[pick.IntN(len(plays))]
		if _, err := g.MakeChoice(sess(g.Active), p.Card, p.Targets, p.Secondary); err != nil {
			t.Fatalf("%s: validated play rejected: %v", label, err)
		}
	}
	return g
}

func TestRandomGamesFinish(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		for seed := uint64(1); seed <= 8; seed++ {
			g := playRandomGame(t, n, seed, -1)
			if !g.GameOver {
				t.Errorf("n=%d seed=%d: game did not finish, state %s", n, seed, g.State())
				continue
			}
			w := g.Winner()
			if g.Players[w].Score < g.WinningScore {
				t.Errorf("n=%d seed=%d: winner %d has %d of %d", n, seed, w, g.Players[w].Score, g.WinningScore)
			}
			for i, p := range g.Players {
				if i != w && p.Score >= g.WinningScore {
					t.Errorf("n=%d seed=%d: player %d also reached the winning score", n, seed, i)
				}
			}
		}
	}
}

func TestRandomGamesWithDeparture(t *testing.T) {
	for n := 3; n <= MaxPlayers; n++ {
		for seed := uint64(1); seed <= 4; seed++ {
			g := playRandomGame(t, n, seed, int(seed)*3)
			if g.InProgress() {
				t.Errorf("n=%d seed=%d: game still running after %d steps", n, seed, maxStepsPerGame)
			}
			if st := g.State(); st != StateGameOver && st != StateLobby {
				t.Errorf("n=%d seed=%d: ended in state %s", n, seed, st)
			}
		}
	}
}

func FuzzMakeChoice(f *testing.F) {
	f.Add(uint64(1), uint8(0), []byte{1, 1, 0, 9})
	f.Add(uint64(7), uint8(4), []byte{12, 1, 0x20, 2, 18, 2, 0, 17})
	f.Fuzz(func(t *testing.T, seed uint64, n uint8, script []byte) {
		players := int(n)%(MaxPlayers-MinPlayers+1) + MinPlayers
		g := NewGame(NewSource(seed))
		for i := 0; i < players; i++ {
			g.AddPlayer(sess(i), "p")
		}
		g.StartGame()

		for ; len(script) >= 4 && g.InProgress(); script = script[4:] {
			if d := g.BishopDecider; d != NoPlayer {
				g.MakeBishopChoice(sess(d), script[0]&1 == 1)
				continue
			}
			card := Card(script[0] % 20)
			var targets []int
			switch script[3] % 3 {
			case 1:
				targets = []int{int(int8(script[1])) % 10}
			case 2:
				targets = []int{int(int8(script[1])) % 10, int(script[2]>>4) % 10}
			}
			var sec *int
			if v := int(script[3]>>2)%12 - 1; v >= 0 {
				sec = &v
			}

			before := g.Log.Len()
			hand := slices.Clone(g.Players[g.Active].Hand)
			active := g.Active
			out, err := g.MakeChoice(sess(g.Active), card, targets, sec)
			if err != nil {
				if out != Rejected || g.Log.Len() != before || g.Active != active || !slices.Equal(hand, g.Players[active].Hand) {
					t.Fatalf("rejected play changed state: %v", err)
				}
			}
			checkInvariants(t, g, "fuzz")
		}
	})
}

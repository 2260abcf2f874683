package engine

import "sort"

// advance moves the game past a completed turn. In order:
//   - disconnected players still in the round are knocked out;
//   - an empty deck ends the round by comparing hands;
//   - a player at the winning score ends the game, several restart it;
//   - a finished round deals the next one;
//   - otherwise the next player in seat order draws.
func (g *Game) advance() {
	if !g.InProgress() {
		return
	}
	if !g.RoundOver {
		for i, p := range g.Players {
			if p.Out || p.Connected() {
				continue
			}
			g.logEvent(EventDisconnectedOut, i, NoPlayer)
			g.knockOut(i)
			if g.RoundOver {
				break
			}
		}
	}
	if !g.RoundOver && len(g.Deck) == 0 {
		g.scoreExhaustedDeck()
	}
	if g.checkWin() {
		return
	}
	if g.RoundOver {
		g.startRound(g.eligiblePlayers())
		return
	}
	g.Active = g.nextInRound(g.Active)
	g.draw(g.Active)
}

// FinalValues returns the deck-exhaustion ranking of the players still in
// the round: hand value plus one per Count discarded, then discard total.
func (g *Game) FinalValues() []FinalValue {
	var finals []FinalValue
	for i, p := range g.Players {
		if p.Out || len(p.Hand) == 0 {
			continue
		}
		f := FinalValue{Player: i, Card: p.Hand[0], Value: p.Hand[0].Value()}
		for _, c := range p.Played {
			if c == Count {
				f.Counts++
			}
			f.CardSum += c.Value()
		}
		f.Total = f.Value + f.Counts
		finals = append(finals, f)
	}
	sort.SliceStable(finals, func(a, b int) bool {
		if finals[a].Total != finals[b].Total {
			return finals[a].Total > finals[b].Total
		}
		return finals[a].CardSum > finals[b].CardSum
	})
	return finals
}

// scoreExhaustedDeck ends the round by comparing the remaining hands.
func (g *Game) scoreExhaustedDeck() {
	finals := g.FinalValues()
	g.RoundOver = true
	tied := len(finals) > 1 && finals[0].Total == finals[1].Total
	g.Log.Append(Event{
		Kind:     EventDeckExhausted,
		Player:   NoPlayer,
		Target:   NoPlayer,
		Finals:   finals,
		ShowSums: tied,
	})

	if tied {
		a, b := finals[0], finals[1]
		w := NoPlayer
		switch {
		case a.Card == Princess && b.Card == Bishop:
			w = a.Player
		case a.Card == Bishop && b.Card == Princess:
			w = b.Player
		}
		if w != NoPlayer {
			g.logEvent(EventPrincessBeatsBishop, w, NoPlayer, withCard(Princess))
			g.awardRound(w)
			g.Active = w
			return
		}
	}

	var winners []int
	for k, f := range finals {
		if k > 0 && (f.Total != finals[0].Total || f.CardSum != finals[0].CardSum) {
			break
		}
		kind := EventHighestValue
		if k > 0 {
			kind = EventTiedHighest
		}
		g.logEvent(kind, f.Player, NoPlayer, withCard(f.Card), withValue(f.Total))
		g.awardRound(f.Player)
		winners = append(winners, f.Player)
	}
	switch len(winners) {
	case 0:
	case 1:
		g.Active = winners[0]
	default:
		g.Active = winners[g.rng.IntN(len(winners))]
	}
}

// checkWin ends or restarts the game when anyone reached the winning score,
// and reports whether it did.
func (g *Game) checkWin() bool {
	var leaders []int
	best := 0
	for i, p := range g.Players {
		if p.Score >= g.WinningScore {
			leaders = append(leaders, i)
			best = max(best, p.Score)
		}
	}
	switch len(leaders) {
	case 0:
		return false
	case 1:
		g.finish(leaders[0])
		return true
	}

	g.WinningScore = best + 1
	g.logEvent(EventTieRestart, NoPlayer, NoPlayer, withValue(g.WinningScore), withPlayers(leaders))

	var seated []int
	for _, i := range leaders {
		if g.Players[i].Connected() {
			seated = append(seated, i)
		}
	}
	if len(seated) == 1 {
		g.finish(seated[0])
		return true
	}
	g.Contenders = seated
	g.RoundOver = true
	g.startRound(seated)
	return true
}

// eligiblePlayers returns the connected seats allowed into the next round.
// After a tie restart only the tied players are dealt in.
func (g *Game) eligiblePlayers() []int {
	if g.Contenders == nil {
		return g.connectedPlayers()
	}
	var out []int
	for _, i := range g.Contenders {
		if g.Players[i].Connected() {
			out = append(out, i)
		}
	}
	return out
}

func (g *Game) finish(w int) {
	g.GameOver = true
	g.RoundOver = true
	g.BishopDecider = NoPlayer
	g.ForcedTarget = NoPlayer
	g.Active = w
	g.logEvent(EventGameOver, w, NoPlayer, withValue(g.Players[w].Score))
}

// Winner returns the seat that won the game, or NoPlayer.
func (g *Game) Winner() int {
	if !g.GameOver {
		return NoPlayer
	}
	return g.Active
}

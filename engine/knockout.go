package engine

import "fmt"

// discard moves card from the player's hand to their discard pile and strips
// it from what everyone else believes the player holds. Discarding the
// Princess, by any means, knocks the player out.
func (g *Game) discard(i int, card Card) Card {
	p := g.Players[i]
	idx := indexOf(p.Hand, card)
	if idx < 0 {
		panic(fmt.Sprintf("engine: player %d discarding %s not in hand", i, card))
	}
	p.Hand = append(p.Hand[:idx:idx], p.Hand[idx+1:]...)
	p.Played = append(p.Played, card)
	for _, o := range g.Players {
		o.Known[i] = removeCard(o.Known[i], card)
	}
	if card == Princess {
		g.logEvent(EventPrincessDiscarded, i, NoPlayer, withCard(Princess))
		g.knockOut(i)
	}
	return card
}

// knockOut removes the player from the round. A Constable already in their
// discards pays out first, then the hand is laid face up.
func (g *Game) knockOut(i int) {
	p := g.Players[i]
	if p.Out {
		return
	}
	p.Out = true
	if p.hasPlayed(Constable) {
		g.logEvent(EventConstableBonus, i, NoPlayer, withCard(Constable))
		g.score(i)
	}
	p.Played = append(p.Played, p.Hand...)
	p.Hand = nil
	for _, o := range g.Players {
		o.Known[i] = nil
	}
	g.checkLastStanding()
}

// checkLastStanding ends the round when one player remains.
func (g *Game) checkLastStanding() {
	if g.RoundOver {
		return
	}
	left := g.Remaining()
	if len(left) != 1 {
		return
	}
	w := left[0]
	g.RoundOver = true
	g.BishopDecider = NoPlayer
	g.logEvent(EventLastPlayerStanding, w, NoPlayer)
	g.awardRound(w)
	g.Active = w
}

// awardRound scores a round winner and any Jester claim on them.
func (g *Game) awardRound(w int) {
	g.score(w)
	if j := g.Players[w].Jester; j != NoPlayer {
		g.logEvent(EventJesterBonus, j, w)
		g.score(j)
	}
}

// reveal records that observer has seen observed's current hand.
func (g *Game) reveal(observer, observed int) {
	if observer == observed {
		return
	}
	g.Players[observer].Known[observed] = append([]Card(nil), g.Players[observed].Hand...)
}

// swapHands exchanges two hands. What anyone knew of one hand now describes
// the other seat.
func (g *Game) swapHands(a, b int) {
	pa, pb := g.Players[a], g.Players[b]
	pa.Hand, pb.Hand = pb.Hand, pa.Hand
	for _, o := range g.Players {
		o.Known[a], o.Known[b] = o.Known[b], o.Known[a]
	}
	pa.Known[a] = nil
	pb.Known[b] = nil
}

// removeCard returns cards without its first occurrence of c.
func removeCard(cards []Card, c Card) []Card {
	idx := indexOf(cards, c)
	if idx < 0 {
		return cards
	}
	return append(cards[:idx:idx], cards[idx+1:]...)
}

package engine

// resolvedPlay is a validated play with the card already discarded.
type resolvedPlay struct {
	player    int
	card      Card
	targets   []int
	secondary int
}

// effect resolves a card and reports whether the turn should advance.
type effect func(g *Game, p resolvedPlay) bool

// effects is indexed by Card; every entry of AllCards has a handler.
var effects = [Bishop + 1]effect{
	Guard:        (*Game).resolveGuard,
	Priest:       (*Game).resolvePriest,
	Baron:        (*Game).resolveBaron,
	Handmaid:     passive,
	Prince:       (*Game).resolvePrince,
	King:         (*Game).resolveKing,
	Countess:     passive,
	Princess:     passive,
	Assassin:     passive,
	Jester:       (*Game).resolveJester,
	Cardinal:     (*Game).resolveCardinal,
	Baroness:     (*Game).resolveBaroness,
	Sycophant:    (*Game).resolveSycophant,
	Count:        passive,
	Constable:    passive,
	DowagerQueen: (*Game).resolveDowagerQueen,
	Bishop:       (*Game).resolveBishop,
}

// passive covers cards whose discard has no immediate effect. Handmaid
// protection, the Princess knockout and the Count, Constable and Assassin
// bonuses are all read from the discard pile elsewhere.
func passive(*Game, resolvedPlay) bool { return true }

// MakeChoice plays card from the session's hand. On rejection the state is
// untouched and the error explains why.
func (g *Game) MakeChoice(session string, card Card, targets []int, secondary *int) (Outcome, error) {
	play := Play{Card: card, Targets: targets, Secondary: secondary}
	verdict, err := g.Validate(session, play)
	if err != nil {
		return Rejected, err
	}
	player := g.Active

	if verdict == VerdictAutoDiscard {
		g.ForcedTarget = NoPlayer
		g.logEvent(EventNoLegalTargets, player, NoPlayer, withCard(card))
		g.discard(player, card)
		g.advance()
		return AutoDiscarded, nil
	}

	g.ForcedTarget = NoPlayer
	g.logEvent(EventCardPlayed, player, NoPlayer, withCard(card), withTargets(targets))
	g.discard(player, card)

	rp := resolvedPlay{player: player, card: card, targets: append([]int(nil), targets...)}
	if secondary != nil {
		rp.secondary = *secondary
	}
	if effects[card](g, rp) {
		g.advance()
	}
	return Applied, nil
}

// Guard: guess the target's card; the Assassin turns it back on the guesser.
func (g *Game) resolveGuard(p resolvedPlay) bool {
	t := p.targets[0]
	target := g.Players[t]
	if target.Hand[0] == Assassin {
		g.logEvent(EventAssassinCounter, p.player, t, withCard(Assassin))
		g.knockOut(p.player)
		g.discard(t, Assassin)
		g.draw(t)
		return true
	}
	g.logEvent(EventGuessed, p.player, t, withCard(p.card), withValue(p.secondary))
	if target.Hand[0].Value() == p.secondary {
		g.logEvent(EventGuardHit, p.player, t, withCard(target.Hand[0]))
		g.knockOut(t)
	}
	return true
}

func (g *Game) resolvePriest(p resolvedPlay) bool {
	g.reveal(p.player, p.targets[0])
	return true
}

func (g *Game) resolveBaron(p resolvedPlay) bool {
	g.compare(p.player, p.targets[0], false)
	return true
}

func (g *Game) resolveDowagerQueen(p resolvedPlay) bool {
	g.compare(p.player, p.targets[0], true)
	return true
}

// compare knocks out the lower hand, or the higher one when reversed. The
// two players see each other's hands either way. Ties do nothing.
func (g *Game) compare(a, b int, reversed bool) {
	g.reveal(a, b)
	g.reveal(b, a)
	va, vb := g.Players[a].Hand[0].Value(), g.Players[b].Hand[0].Value()
	if va == vb {
		return
	}
	loser := b
	if (va < vb) != reversed {
		loser = a
	}
	winner := a
	if loser == a {
		winner = b
	}
	c := g.Players[loser].Hand[0]
	g.logEvent(EventComparisonLoss, loser, winner, withCard(c), withValue(c.Value()))
	g.knockOut(loser)
}

// Prince: the target discards their hand and draws unless it was the Princess.
func (g *Game) resolvePrince(p resolvedPlay) bool {
	t := p.targets[0]
	if g.discard(t, g.Players[t].Hand[0]) != Princess {
		g.draw(t)
	}
	return true
}

func (g *Game) resolveKing(p resolvedPlay) bool {
	a, b := p.player, p.targets[0]
	g.swapHands(a, b)
	g.reveal(a, b)
	g.reveal(b, a)
	return true
}

func (g *Game) resolveJester(p resolvedPlay) bool {
	g.Players[p.targets[0]].Jester = p.player
	return true
}

// Cardinal: swap two hands, then the player looks at the selected one.
func (g *Game) resolveCardinal(p resolvedPlay) bool {
	a, b := p.targets[0], p.targets[1]
	g.swapHands(a, b)
	g.reveal(a, b)
	g.reveal(b, a)
	g.logEvent(EventLookedAtHand, p.player, p.secondary)
	g.reveal(p.player, p.secondary)
	return true
}

func (g *Game) resolveBaroness(p resolvedPlay) bool {
	for _, t := range p.targets {
		g.reveal(p.player, t)
	}
	return true
}

func (g *Game) resolveSycophant(p resolvedPlay) bool {
	g.ForcedTarget = p.targets[0]
	return true
}

// Bishop: a correct guess scores a point and, unless that ends the game,
// hands the target a choice to discard and redraw.
func (g *Game) resolveBishop(p resolvedPlay) bool {
	t := p.targets[0]
	g.logEvent(EventGuessed, p.player, t, withCard(p.card), withValue(p.secondary))
	held := g.Players[t].Hand[0]
	if held.Value() != p.secondary {
		return true
	}
	g.logEvent(EventBishopHit, p.player, t, withCard(held))
	g.score(p.player)
	if g.checkWin() {
		return false
	}
	g.BishopDecider = t
	return false
}

// MakeBishopChoice records the Bishop target's decision and advances the turn.
func (g *Game) MakeBishopChoice(session string, discard bool) error {
	if !g.inRound() {
		return ErrNotInProgress
	}
	if g.BishopDecider == NoPlayer || g.PlayerIndex(session) != g.BishopDecider {
		return ErrNotDecider
	}
	g.decideBishop(discard)
	return nil
}

func (g *Game) decideBishop(discard bool) {
	d := g.BishopDecider
	g.BishopDecider = NoPlayer
	if !discard {
		g.logEvent(EventBishopDecision, d, NoPlayer)
	} else {
		c := g.Players[d].Hand[0]
		g.logEvent(EventBishopDecision, d, NoPlayer, withCard(c))
		if g.discard(d, c) != Princess {
			g.draw(d)
		}
	}
	g.advance()
}

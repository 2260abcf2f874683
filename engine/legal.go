package engine

import (
	"errors"
	"fmt"
)

var (
	ErrNotInProgress    = errors.New("no round in progress")
	ErrAwaitingDecision = errors.New("waiting on a Bishop decision")
	ErrNotActivePlayer  = errors.New("not the active player")
	ErrNotDrawn         = errors.New("active player does not hold two cards")
	ErrCardNotInHand    = errors.New("card not in hand")
	ErrCountessRule     = errors.New("the Countess must be played")
	ErrDuplicateTarget  = errors.New("duplicate target")
	ErrTargetCount      = errors.New("wrong number of targets")
	ErrForcedTarget     = errors.New("the Sycophant's target must be chosen")
	ErrIllegalTarget    = errors.New("illegal target")
	ErrSecondaryChoice  = errors.New("invalid secondary choice")
	ErrNotDecider       = errors.New("no Bishop decision pending for this player")
)

// Play is a request to play a card from the active player's hand.
type Play struct {
	Card      Card
	Targets   []int
	Secondary *int // guessed value or selected target, per the card's Shape
}

// Verdict is the result of validating a Play.
type Verdict uint8

const (
	VerdictReject      Verdict = iota
	VerdictAccept              // resolve the card's effect
	VerdictAutoDiscard         // no legal targets, discard without effect
)

// Validate checks a play by session against the current state without
// mutating it. A nil error accompanies VerdictAccept or VerdictAutoDiscard.
func (g *Game) Validate(session string, play Play) (Verdict, error) {
	if !g.inRound() {
		return VerdictReject, ErrNotInProgress
	}
	if g.BishopDecider != NoPlayer {
		return VerdictReject, ErrAwaitingDecision
	}
	if session == "" || g.PlayerIndex(session) != g.Active {
		return VerdictReject, ErrNotActivePlayer
	}
	me := g.Players[g.Active]
	if len(me.Hand) != 2 {
		return VerdictReject, ErrNotDrawn
	}
	if !play.Card.Valid() || !me.Holds(play.Card) {
		return VerdictReject, fmt.Errorf("%w: %s", ErrCardNotInHand, play.Card)
	}
	if (play.Card == Prince || play.Card == King) && me.Holds(Countess) {
		return VerdictReject, fmt.Errorf("%w: holding %s", ErrCountessRule, play.Card)
	}

	seen := make(map[int]bool, len(play.Targets))
	for _, t := range play.Targets {
		if seen[t] {
			return VerdictReject, fmt.Errorf("%w: player %d", ErrDuplicateTarget, t)
		}
		seen[t] = true
		if t < 0 || t >= len(g.Players) {
			return VerdictReject, fmt.Errorf("%w: player %d does not exist", ErrIllegalTarget, t)
		}
	}

	shape := play.Card.Shape()
	legal := g.LegalTargets(g.Active, play.Card)
	if shape.MinTargets > 0 && len(legal) < shape.MinTargets {
		if len(play.Targets) == 0 {
			return VerdictAutoDiscard, nil
		}
		return VerdictReject, fmt.Errorf("%w: %s has no legal targets", ErrIllegalTarget, play.Card)
	}
	if len(play.Targets) < shape.MinTargets || len(play.Targets) > shape.MaxTargets {
		return VerdictReject, fmt.Errorf("%w: %s takes %d..%d, got %d",
			ErrTargetCount, play.Card, shape.MinTargets, shape.MaxTargets, len(play.Targets))
	}

	// The Sycophant only binds plays that could legally choose its target.
	if f := g.ForcedTarget; f != NoPlayer && len(play.Targets) > 0 && contains(legal, f) && !seen[f] {
		return VerdictReject, fmt.Errorf("%w: player %d", ErrForcedTarget, f)
	}

	for _, t := range play.Targets {
		if err := g.checkTarget(g.Active, t, shape); err != nil {
			return VerdictReject, err
		}
	}

	switch shape.Choice {
	case ChoiceNone:
		if play.Secondary != nil {
			return VerdictReject, fmt.Errorf("%w: %s takes no secondary choice", ErrSecondaryChoice, play.Card)
		}
	case ChoiceCardNumber:
		if play.Secondary == nil || *play.Secondary < 0 || *play.Secondary > MaxGuess {
			return VerdictReject, fmt.Errorf("%w: %s needs a guess in 0..%d", ErrSecondaryChoice, play.Card, MaxGuess)
		}
	case ChoiceSelectedPlayer:
		if play.Secondary == nil || !seen[*play.Secondary] {
			return VerdictReject, fmt.Errorf("%w: %s needs one of its targets selected", ErrSecondaryChoice, play.Card)
		}
	}
	return VerdictAccept, nil
}

// checkTarget reports why t cannot be targeted by player with a card of the
// given shape, or nil.
func (g *Game) checkTarget(player, t int, shape Shape) error {
	target := g.Players[t]
	switch {
	case target.Out:
		return fmt.Errorf("%w: player %d is out of the round", ErrIllegalTarget, t)
	case t == player && !shape.CanTargetSelf:
		return fmt.Errorf("%w: cannot target yourself", ErrIllegalTarget)
	case t != player && target.Protected():
		return fmt.Errorf("%w: player %d is protected by the Handmaid", ErrIllegalTarget, t)
	}
	return nil
}

// LegalTargets returns the seats player may target with card, in seat order.
func (g *Game) LegalTargets(player int, card Card) []int {
	shape := card.Shape()
	if shape.MaxTargets == 0 {
		return nil
	}
	var out []int
	for t := range g.Players {
		if g.checkTarget(player, t, shape) == nil {
			out = append(out, t)
		}
	}
	return out
}

func contains(xs []int, x int) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

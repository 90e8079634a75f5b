package bot

import (
	"sort"

	"liap/internal/config"
	"liap/internal/domain"
	"liap/internal/engine"
)

// Baseline is the default strategy: always legal, mildly sensible. It
// declares its count of strong pieces, accepts a redeal only on hopeless
// hands, opens with its best pair or lowest single, and follows with the
// strongest matching combination it can assemble.
type Baseline struct {
	cfg *config.GameConfig
}

// NewBaseline builds the default strategy against the given rules config.
func NewBaseline(cfg *config.GameConfig) *Baseline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Baseline{cfg: cfg}
}

// Decide implements Brain.
func (b *Baseline) Decide(g *domain.Game, playerID string) *engine.GameAction {
	if g.PendingActorID() != playerID {
		return nil
	}
	p, ok := g.Players[playerID]
	if !ok {
		return nil
	}

	switch g.Phase {
	case domain.PhasePreparation:
		return &engine.GameAction{
			Type:    engine.ActionRedealDecision,
			Payload: engine.RedealDecisionPayload{Accept: b.acceptRedeal(p.Hand)},
		}
	case domain.PhaseDeclaration:
		return &engine.GameAction{
			Type:    engine.ActionDeclare,
			Payload: engine.DeclarePayload{Value: b.declare(g, p)},
		}
	case domain.PhaseTurn:
		return &engine.GameAction{
			Type:    engine.ActionPlayPieces,
			Payload: engine.PlayPiecesPayload{Pieces: b.play(g, p)},
		}
	}
	return nil
}

// acceptRedeal accepts only when the hand is weak with margin to spare:
// nothing above four points under the weak threshold.
func (b *Baseline) acceptRedeal(hand []domain.Piece) bool {
	return domain.IsWeakHand(hand, b.cfg.WeakHandThreshold-4)
}

// declare targets the count of strong pieces, clamped to the nearest legal
// option.
func (b *Baseline) declare(g *domain.Game, p *domain.Player) int {
	target := 0
	for _, piece := range p.Hand {
		if piece.Points > b.cfg.WeakHandThreshold {
			target++
		}
	}
	final := g.DeclareIndex == len(g.DeclareOrder)-1
	options := domain.DeclarationOptions(g.DeclaredSum(), final, p.ZeroStreak)
	bestOpt := options[0]
	for _, opt := range options {
		if abs(opt-target) < abs(bestOpt-target) {
			bestOpt = opt
		}
	}
	return bestOpt
}

// play opens with the best pair if one exists, else the lowest single;
// following, it submits the strongest matching combination it holds, or
// discards its lowest pieces when it cannot match.
func (b *Baseline) play(g *domain.Game, p *domain.Player) []domain.Piece {
	hand := append([]domain.Piece(nil), p.Hand...)
	sort.Slice(hand, func(i, j int) bool { return hand[i].Points < hand[j].Points })

	opening := g.Turn == nil || g.Turn.Resolved()
	if opening {
		if pair := bestPair(hand); pair != nil {
			return pair
		}
		return hand[:1]
	}

	n := g.Turn.RequiredCount
	if combo := bestMatching(hand, n, g.Turn.OpenerType); combo != nil {
		return combo
	}
	return hand[:n]
}

// bestPair returns the highest pair in an ascending hand, or nil.
func bestPair(hand []domain.Piece) []domain.Piece {
	for i := len(hand) - 1; i > 0; i-- {
		if hand[i].Points == hand[i-1].Points {
			return []domain.Piece{hand[i-1], hand[i]}
		}
	}
	return nil
}

// bestMatching assembles the highest-sum combination of the required size and
// type from an ascending hand, or nil when none exists. Only the shapes a
// follower can feasibly hunt for are searched; rarer shapes fall back to nil.
func bestMatching(hand []domain.Piece, n int, typ domain.PlayType) []domain.Piece {
	switch typ {
	case domain.PlaySingle:
		return []domain.Piece{hand[len(hand)-1]}
	case domain.PlayPair, domain.PlayThreeOfAKind, domain.PlayFourOfAKind, domain.PlayFiveOfAKind:
		return bestOfAKind(hand, n)
	case domain.PlayStraight, domain.PlayExtendedStraight, domain.PlayDoubleStraight:
		return bestStraightLike(hand, n, typ)
	}
	return nil
}

func bestOfAKind(hand []domain.Piece, n int) []domain.Piece {
	byPoints := make(map[int][]domain.Piece)
	for _, p := range hand {
		byPoints[p.Points] = append(byPoints[p.Points], p)
	}
	best := -1
	for points, group := range byPoints {
		if len(group) >= n && points > best {
			best = points
		}
	}
	if best < 0 {
		return nil
	}
	return byPoints[best][:n]
}

// bestStraightLike brute-forces subsets of the straight-group pieces in the
// hand. Hands hold at most eight pieces, so the search space is tiny.
func bestStraightLike(hand []domain.Piece, n int, typ domain.PlayType) []domain.Piece {
	var best []domain.Piece
	bestSum := -1
	subset := make([]domain.Piece, 0, n)
	var walk func(start int)
	walk = func(start int) {
		if len(subset) == n {
			if domain.ClassifyPlay(subset) == typ {
				if sum := domain.PlaySum(subset); sum > bestSum {
					bestSum = sum
					best = append([]domain.Piece(nil), subset...)
				}
			}
			return
		}
		for i := start; i < len(hand); i++ {
			subset = append(subset, hand[i])
			walk(i + 1)
			subset = subset[:len(subset)-1]
		}
	}
	walk(0)
	return best
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

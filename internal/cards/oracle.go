package cards

import (
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrInvalidCard is returned when a card id is outside the deck.
	ErrInvalidCard = errors.New("invalid card")
	// ErrInvalidEncoding is returned for encodings the oracle cannot judge.
	ErrInvalidEncoding = errors.New("invalid encoding")
)

// Oracle decides whether cards form a winning combination (a set).
// Implementations must be safe for concurrent use and free of side effects.
type Oracle interface {
	// IsSet reports whether the given cards form a set.
	IsSet(cards ...Card) (bool, error)
	// FindSets returns up to limit sets found among cards; limit <= 0 means
	// no limit. Each set is sorted ascending.
	FindSets(cards []Card, limit int) ([][]Card, error)
}

// FeatureOracle is the classic rule: a set is FeatureSize distinct cards where
// every feature is either the same on all cards or different on all cards.
type FeatureOracle struct {
	enc Encoding
}

// NewFeatureOracle returns an oracle for the given encoding.
func NewFeatureOracle(enc Encoding) (*FeatureOracle, error) {
	if enc.FeatureSize < 3 {
		return nil, fmt.Errorf("%w: feature size %d (need at least 3)", ErrInvalidEncoding, enc.FeatureSize)
	}
	if enc.FeatureCount < 1 {
		return nil, fmt.Errorf("%w: feature count %d", ErrInvalidEncoding, enc.FeatureCount)
	}
	return &FeatureOracle{enc: enc}, nil
}

// Encoding returns the encoding the oracle judges.
func (o *FeatureOracle) Encoding() Encoding {
	return o.enc
}

// IsSet implements Oracle.
func (o *FeatureOracle) IsSet(cards ...Card) (bool, error) {
	if len(cards) != o.enc.FeatureSize {
		return false, nil
	}
	if err := o.check(cards); err != nil {
		return false, err
	}
	seen := make(map[Card]struct{}, len(cards))
	for _, c := range cards {
		if _, dup := seen[c]; dup {
			return false, nil
		}
		seen[c] = struct{}{}
	}

	vectors := make([][]int, len(cards))
	for i, c := range cards {
		vectors[i] = o.enc.Features(c)
	}
	values := make([]int, len(cards))
	for f := range o.enc.FeatureCount {
		for i := range vectors {
			values[i] = vectors[i][f]
		}
		if !allSame(values) && !allDistinct(values, o.enc.FeatureSize) {
			return false, nil
		}
	}
	return true, nil
}

// Complete returns the unique card that turns the given FeatureSize-1 cards
// into a set, if one exists.
func (o *FeatureOracle) Complete(partial []Card) (Card, bool) {
	if len(partial) != o.enc.FeatureSize-1 {
		return None, false
	}
	vectors := make([][]int, len(partial))
	for i, c := range partial {
		vectors[i] = o.enc.Features(c)
	}
	values := make([]int, len(partial))
	missing := make([]int, o.enc.FeatureCount)
	for f := range o.enc.FeatureCount {
		for i := range vectors {
			values[i] = vectors[i][f]
		}
		switch {
		case allSame(values):
			missing[f] = values[0]
		case allDistinct(values, o.enc.FeatureSize):
			missing[f] = missingValue(values, o.enc.FeatureSize)
		default:
			return None, false
		}
	}
	return o.enc.Card(missing), true
}

// FindSets implements Oracle. For every combination of FeatureSize-1 cards it
// computes the completing card and keeps the set if that card appears later
// in the input, so each set is reported once.
func (o *FeatureOracle) FindSets(cards []Card, limit int) ([][]Card, error) {
	if err := o.check(cards); err != nil {
		return nil, err
	}
	position := make(map[Card]int, len(cards))
	for i, c := range cards {
		if _, dup := position[c]; !dup {
			position[c] = i
		}
	}

	var sets [][]Card
	k := o.enc.FeatureSize - 1
	idx := make([]int, k)
	partial := make([]Card, k)

	var walk func(depth, start int) bool
	walk = func(depth, start int) bool {
		if depth == k {
			for i, j := range idx {
				partial[i] = cards[j]
			}
			third, ok := o.Complete(partial)
			if !ok {
				return true
			}
			if pos, found := position[third]; !found || pos <= idx[k-1] {
				return true
			}
			set := append(slices.Clone(partial), third)
			slices.Sort(set)
			sets = append(sets, set)
			return limit <= 0 || len(sets) < limit
		}
		for i := start; i < len(cards); i++ {
			if position[cards[i]] != i {
				continue
			}
			idx[depth] = i
			if !walk(depth+1, i+1) {
				return false
			}
		}
		return true
	}
	walk(0, 0)
	return sets, nil
}

func (o *FeatureOracle) check(cards []Card) error {
	size := o.enc.DeckSize()
	for _, c := range cards {
		if c < 0 || int(c) >= size {
			return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidCard, c, size)
		}
	}
	return nil
}

func allSame(values []int) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func allDistinct(values []int, size int) bool {
	seen := make([]bool, size)
	for _, v := range values {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

func missingValue(values []int, size int) int {
	seen := make([]bool, size)
	for _, v := range values {
		seen[v] = true
	}
	for v, ok := range seen {
		if !ok {
			return v
		}
	}
	return -1
}

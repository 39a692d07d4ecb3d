// Package cards implements the card encoding used by the game: a card is an
// integer id whose base-N digits are its feature values, the deck the dealer
// draws from, and the oracle that decides whether cards form a set.
package cards

import (
	"fmt"
	"strings"
)

// Card is an opaque card identifier in [0, deckSize).
type Card int

// None marks the absence of a card (an empty slot).
const None Card = -1

// Valid reports whether c is a real card id.
func (c Card) Valid() bool {
	return c >= 0
}

// String returns the card id, or "-" for None.
func (c Card) String() string {
	if !c.Valid() {
		return "-"
	}
	return fmt.Sprintf("%d", int(c))
}

// Encoding maps card ids to feature vectors. Every card has FeatureCount
// features and each feature takes one of FeatureSize values, so there are
// FeatureSize^FeatureCount distinct cards.
type Encoding struct {
	FeatureCount int
	FeatureSize  int
}

// Classic is the 81 card, four feature, three value encoding.
var Classic = Encoding{FeatureCount: 4, FeatureSize: 3}

// DeckSize returns the number of distinct cards in the encoding.
func (e Encoding) DeckSize() int {
	n := 1
	for range e.FeatureCount {
		n *= e.FeatureSize
	}
	return n
}

// Features returns the feature vector of card, least significant feature first.
func (e Encoding) Features(card Card) []int {
	features := make([]int, e.FeatureCount)
	v := int(card)
	for i := range features {
		features[i] = v % e.FeatureSize
		v /= e.FeatureSize
	}
	return features
}

// Card returns the card with the given feature vector.
func (e Encoding) Card(features []int) Card {
	v := 0
	for i := len(features) - 1; i >= 0; i-- {
		v = v*e.FeatureSize + features[i]
	}
	return Card(v)
}

// Describe renders the feature vector of a card, e.g. "0120".
func (e Encoding) Describe(card Card) string {
	if !card.Valid() {
		return "-"
	}
	var sb strings.Builder
	for _, f := range e.Features(card) {
		fmt.Fprintf(&sb, "%d", f)
	}
	return sb.String()
}

package cards

import (
	rand "math/rand/v2"
	"slices"
)

// Deck holds the cards that are neither on the grid nor discarded.
// It is owned by a single goroutine (the dealer) and is not safe for
// concurrent use.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// NewDeck creates a deck holding cards [0, size), shuffled with rng.
func NewDeck(size int, rng *rand.Rand) *Deck {
	d := &Deck{
		cards: make([]Card, 0, size),
		rng:   rng,
	}
	for c := range size {
		d.cards = append(d.cards, Card(c))
	}
	d.Shuffle()
	return d
}

// Shuffle randomizes the order of cards in the deck.
func (d *Deck) Shuffle() {
	d.rng.Shuffle(len(d.cards), func(i, j int) {
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	})
}

// Draw removes and returns a uniformly random card.
func (d *Deck) Draw() (Card, bool) {
	if len(d.cards) == 0 {
		return None, false
	}
	i := d.rng.IntN(len(d.cards))
	card := d.cards[i]
	last := len(d.cards) - 1
	d.cards[i] = d.cards[last]
	d.cards = d.cards[:last]
	return card, true
}

// Return puts a card back into the deck. The caller reshuffles when done.
func (d *Deck) Return(card Card) {
	d.cards = append(d.cards, card)
}

// Len returns the number of cards left in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// IsEmpty returns true if the deck has no cards left.
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Cards returns a copy of the cards in the deck.
func (d *Deck) Cards() []Card {
	return slices.Clone(d.cards)
}

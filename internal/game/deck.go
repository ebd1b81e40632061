package game

import "math/rand"

// Deck is a draw pile with its discard. The top of the pile is the last element.
type Deck[T any] struct {
	Cards   []T
	Discard []T
}

// NewDeck returns a deck holding a shuffled copy of cards.
func NewDeck[T any](cards []T, rng *rand.Rand) *Deck[T] {
	d := &Deck[T]{Cards: append([]T(nil), cards...)}
	shuffle(d.Cards, rng)
	return d
}

// Draw pops the top card. When the pile is empty the discard is shuffled in
// first. ok is false when both are empty.
func (d *Deck[T]) Draw(rng *rand.Rand) (card T, ok bool) {
	if len(d.Cards) == 0 {
		d.Cards = d.Discard
		d.Discard = nil
		shuffle(d.Cards, rng)
	}
	if len(d.Cards) == 0 {
		return card, false
	}
	card = d.Cards[len(d.Cards)-1]
	d.Cards = d.Cards[:len(d.Cards)-1]
	return card, true
}

// DrawOnce draws a card and immediately discards it, so it cannot come up
// again until the next reshuffle.
func (d *Deck[T]) DrawOnce(rng *rand.Rand) (T, bool) {
	card, ok := d.Draw(rng)
	if ok {
		d.Discard = append(d.Discard, card)
	}
	return card, ok
}

// Put adds a card to the discard.
func (d *Deck[T]) Put(card T) {
	d.Discard = append(d.Discard, card)
}

// Len returns the number of cards left in the draw pile.
func (d *Deck[T]) Len() int {
	return len(d.Cards)
}

func shuffle[T any](s []T, rng *rand.Rand) {
	rng.Shuffle(len(s), func(i, j int) {
		s[i], s[j] = s[j], s[i]
	})
}

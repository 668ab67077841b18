// Package memory implements the memory-match game.
//
// The board is an index-addressed slice of Cards. Callers flip cards by index
// and read the board back for rendering; the engine never holds per-card
// callbacks.
package memory

import (
	"math/rand/v2"
	"time"

	"github.com/fyrsmithlabs/vault/internal/timer"
)

// Card is one cell of the board.
type Card struct {
	Symbol  string
	Flipped bool
	Matched bool
}

// FaceUp reports whether the card's symbol is visible.
func (c Card) FaceUp() bool {
	return c.Flipped || c.Matched
}

// FlipResult describes what a Flip did.
type FlipResult int

const (
	// Ignored means the flip was refused and nothing changed.
	Ignored FlipResult = iota
	// Flipped means the card turned face up and waits for a partner.
	Flipped
	// Matched means the card completed a pair.
	Matched
	// Mismatched means the card did not match; both turn back after a delay.
	Mismatched
)

func (r FlipResult) String() string {
	switch r {
	case Flipped:
		return "flipped"
	case Matched:
		return "matched"
	case Mismatched:
		return "mismatched"
	}
	return "ignored"
}

// Engine holds one deal of the memory game.
type Engine struct {
	symbols       []string
	mismatchDelay time.Duration
	completeDelay time.Duration
	sched         timer.Scheduler
	rng           *rand.Rand
	onComplete    func()

	cards    []Card
	flipped  []int
	pairs    int
	complete bool
	flipBack timer.Handle
	finish   timer.Handle
}

// NewEngine creates an engine. onComplete runs once, completeDelay after the
// last pair is matched.
func NewEngine(symbols []string, mismatchDelay, completeDelay time.Duration, sched timer.Scheduler, rng *rand.Rand, onComplete func()) *Engine {
	return &Engine{
		symbols:       symbols,
		mismatchDelay: mismatchDelay,
		completeDelay: completeDelay,
		sched:         sched,
		rng:           rng,
		onComplete:    onComplete,
	}
}

// Deal cancels pending timers and lays out a freshly shuffled deck holding
// two copies of every symbol.
func (e *Engine) Deal() {
	e.Stop()
	e.cards = NewDeck(e.symbols, e.rng)
	e.flipped = e.flipped[:0]
	e.pairs = 0
	e.complete = false
}

// NewDeck duplicates symbols and shuffles the result uniformly.
func NewDeck(symbols []string, rng *rand.Rand) []Card {
	deck := make([]Card, 0, 2*len(symbols))
	for _, s := range symbols {
		deck = append(deck, Card{Symbol: s})
	}
	for _, s := range symbols {
		deck = append(deck, Card{Symbol: s})
	}
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Flip turns card i face up. It is ignored while two cards are already face
// up, for an out-of-range index, and for cards that are face up or matched.
func (e *Engine) Flip(i int) FlipResult {
	if len(e.flipped) >= 2 || i < 0 || i >= len(e.cards) || e.cards[i].FaceUp() {
		return Ignored
	}

	e.cards[i].Flipped = true
	e.flipped = append(e.flipped, i)
	if len(e.flipped) < 2 {
		return Flipped
	}

	a, b := e.flipped[0], e.flipped[1]
	if e.cards[a].Symbol != e.cards[b].Symbol {
		// at most one mismatch is pending: flips are refused until it resolves
		e.flipBack = e.sched.AfterFunc(e.mismatchDelay, func() {
			e.flipBack = nil
			e.cards[a].Flipped = false
			e.cards[b].Flipped = false
			e.flipped = e.flipped[:0]
		})
		return Mismatched
	}

	e.cards[a].Matched = true
	e.cards[b].Matched = true
	e.flipped = e.flipped[:0]
	e.pairs++
	if e.pairs == len(e.symbols) {
		e.finish = e.sched.AfterFunc(e.completeDelay, func() {
			e.finish = nil
			if e.complete {
				return
			}
			e.complete = true
			if e.onComplete != nil {
				e.onComplete()
			}
		})
	}
	return Matched
}

// Stop cancels pending flip-back and completion timers.
func (e *Engine) Stop() {
	e.flipBack = timer.Stop(e.flipBack)
	e.finish = timer.Stop(e.finish)
}

// Cards returns a copy of the board.
func (e *Engine) Cards() []Card {
	out := make([]Card, len(e.cards))
	copy(out, e.cards)
	return out
}

// FaceUpCount returns how many unmatched cards are face up.
func (e *Engine) FaceUpCount() int {
	return len(e.flipped)
}

// Pairs returns the number of matched pairs.
func (e *Engine) Pairs() int {
	return e.pairs
}

// TotalPairs returns the number of pairs needed to finish.
func (e *Engine) TotalPairs() int {
	return len(e.symbols)
}

// Complete reports whether the completion callback has fired.
func (e *Engine) Complete() bool {
	return e.complete
}

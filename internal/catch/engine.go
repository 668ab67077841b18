// Package catch implements the falling-item catch game.
//
// Coordinates are play-area units with the origin at the top left; y grows
// downwards. The terminal presenter scales them to cells.
package catch

import (
	"math"
	"math/rand/v2"
)

// Kind is the type of a falling item.
type Kind int

const (
	Heart Kind = iota
	BrokenHeart
	Sparkle
)

// Glyph returns the emoji drawn for the kind.
func (k Kind) Glyph() string {
	switch k {
	case BrokenHeart:
		return "💔"
	case Sparkle:
		return "✨"
	}
	return "❤️"
}

func (k Kind) String() string {
	switch k {
	case BrokenHeart:
		return "broken_heart"
	case Sparkle:
		return "sparkle"
	}
	return "heart"
}

// Delta returns the score change for catching the kind.
func (k Kind) Delta() int {
	switch k {
	case BrokenHeart:
		return -2
	case Sparkle:
		return 3
	}
	return 1
}

// Physics constants.
const (
	BaseSpawnRate    = 0.04
	ScoreSpawnFactor = 0.005
	BaseSpeed        = 3.0
	SpeedJitter      = 2.0
	ScoreSpeedFactor = 0.03
	BrokenHeartOdds  = 0.15
	SparkleOdds      = 0.05
	MaxSway          = 0.05
	SwayStep         = 2.0
	ItemWidth        = 20.0
	CatchBand        = 20.0
	CatchMargin      = 10.0
)

// Item is one falling object.
type Item struct {
	X, Y  float64
	Speed float64
	Sway  float64
	Phase float64
	Kind  Kind
}

// Paddle is the player's catcher.
type Paddle struct {
	X, Y, W, H float64
}

// Catches reports whether it overlaps the paddle's catch window.
func (p Paddle) Catches(it Item) bool {
	return it.Y > p.Y && it.Y < p.Y+p.H+CatchBand &&
		it.X > p.X-CatchMargin && it.X < p.X+p.W+CatchMargin
}

// StepResult summarizes one frame.
type StepResult struct {
	Spawned bool
	Caught  []Kind
	Missed  int
	Victory bool
}

// Engine is the catch game physics. It has no notion of time; the caller
// invokes Step once per frame.
type Engine struct {
	width, height float64
	victoryScore  int
	rng           *rand.Rand

	paddle  Paddle
	items   []Item
	score   int
	history []int
}

// NewEngine creates an engine for a play area of the given size.
func NewEngine(width, height float64, paddleW, paddleH, paddleOffset float64, victoryScore int, rng *rand.Rand) *Engine {
	e := &Engine{
		width:        width,
		height:       height,
		victoryScore: victoryScore,
		rng:          rng,
		paddle:       Paddle{W: paddleW, H: paddleH, Y: height - paddleOffset},
	}
	e.Reset(width)
	return e
}

// Reset clears items and score and centres the paddle in a play area of
// the given width.
func (e *Engine) Reset(width float64) {
	e.width = width
	e.items = nil
	e.score = 0
	e.history = e.history[:0]
	e.paddle.X = width/2 - e.paddle.W/2
	e.clampPaddle()
}

// Resize changes the play-area width and keeps the paddle inside it.
func (e *Engine) Resize(width float64) {
	e.width = width
	e.clampPaddle()
}

// MoveTo centres the paddle on x, clamped to the play area.
func (e *Engine) MoveTo(x float64) {
	e.paddle.X = x - e.paddle.W/2
	e.clampPaddle()
}

// Nudge moves the paddle by dx, clamped to the play area.
func (e *Engine) Nudge(dx float64) {
	e.paddle.X += dx
	e.clampPaddle()
}

func (e *Engine) clampPaddle() {
	e.paddle.X = math.Max(0, math.Min(e.paddle.X, e.width-e.paddle.W))
}

// Step advances one frame: maybe spawn, move every item, resolve catches
// and misses. Processing stops at the frame that reaches the victory score.
func (e *Engine) Step() StepResult {
	var res StepResult

	if e.rng.Float64() < e.spawnChance() {
		e.items = append(e.items, e.spawn())
		res.Spawned = true
	}

	kept := e.items[:0]
	for i, it := range e.items {
		if res.Victory {
			kept = append(kept, e.items[i:]...)
			break
		}
		it.Y += it.Speed
		it.X += math.Sin(it.Y*it.Sway+it.Phase) * SwayStep

		if e.paddle.Catches(it) {
			e.apply(it.Kind)
			res.Caught = append(res.Caught, it.Kind)
			res.Victory = e.score >= e.victoryScore
			continue
		}
		if it.Y > e.height {
			res.Missed++
			continue
		}
		kept = append(kept, it)
	}
	e.items = kept
	return res
}

// spawnChance is the per-frame probability of a new item at the current score.
func (e *Engine) spawnChance() float64 {
	return BaseSpawnRate + float64(e.score)*ScoreSpawnFactor
}

func (e *Engine) spawn() Item {
	kind := Heart
	if e.rng.Float64() < BrokenHeartOdds {
		kind = BrokenHeart
	} else if e.rng.Float64() < SparkleOdds {
		kind = Sparkle
	}
	return Item{
		X:     e.rng.Float64() * math.Max(0, e.width-ItemWidth),
		Speed: (BaseSpeed + e.rng.Float64()*SpeedJitter) * (1 + float64(e.score)*ScoreSpeedFactor),
		Kind:  kind,
		Sway:  e.rng.Float64() * MaxSway,
		Phase: e.rng.Float64() * math.Pi * 2,
	}
}

func (e *Engine) apply(k Kind) {
	e.score = max(0, e.score+k.Delta())
	e.history = append(e.history, e.score)
}

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// VictoryScore returns the score that ends the game.
func (e *Engine) VictoryScore() int { return e.victoryScore }

// Paddle returns the paddle.
func (e *Engine) Paddle() Paddle { return e.paddle }

// Items returns a copy of the active items.
func (e *Engine) Items() []Item {
	out := make([]Item, len(e.items))
	copy(out, e.items)
	return out
}

// History returns the score after every catch since the last Reset.
func (e *Engine) History() []int {
	out := make([]int, len(e.history))
	copy(out, e.history)
	return out
}

// Size returns the play-area dimensions.
func (e *Engine) Size() (width, height float64) {
	return e.width, e.height
}

package tui

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/harmonica"
	"github.com/charmbracelet/lipgloss"
)

const (
	confettiCount  = 150
	confettiSpread = 70.0 // degrees
	confettiOrigin = 0.6  // fraction of the field height
)

var confettiColors = []string{"#ff85a1", "#ffd166", "#f72585", "#ffffff", "#b5179e", "#ff4d6d"}

var confettiGlyphs = []rune{'*', '•', '✦', '♥', '·'}

type particle struct {
	proj  *harmonica.Projectile
	glyph rune
	color string
}

// confetti is a burst of projectiles under terminal gravity.
type confetti struct {
	width, height int
	particles     []particle
}

func newConfetti(width, height int, rng *rand.Rand) *confetti {
	c := &confetti{width: width, height: height}
	origin := harmonica.Point{X: float64(width) / 2, Y: float64(height) * confettiOrigin}
	for i := 0; i < confettiCount; i++ {
		// Upward cone of confettiSpread degrees.
		angle := (-90 + (rng.Float64()-0.5)*confettiSpread) * math.Pi / 180
		speed := 8 + rng.Float64()*12
		vel := harmonica.Vector{X: math.Cos(angle) * speed * 2, Y: math.Sin(angle) * speed}
		c.particles = append(c.particles, particle{
			proj:  harmonica.NewProjectile(harmonica.FPS(animationFPS), origin, vel, harmonica.TerminalGravity),
			glyph: confettiGlyphs[rng.IntN(len(confettiGlyphs))],
			color: confettiColors[rng.IntN(len(confettiColors))],
		})
	}
	return c
}

// Step advances every particle one frame and drops those that left the
// field. It reports whether any remain.
func (c *confetti) Step() bool {
	kept := c.particles[:0]
	for _, p := range c.particles {
		pos := p.proj.Update()
		if pos.Y > float64(c.height) || pos.X < 0 || pos.X >= float64(c.width) {
			continue
		}
		kept = append(kept, p)
	}
	c.particles = kept
	return len(c.particles) > 0
}

// Len returns the number of live particles.
func (c *confetti) Len() int {
	return len(c.particles)
}

// View draws the field.
func (c *confetti) View() string {
	grid := make([][]string, c.height)
	for y := range grid {
		grid[y] = make([]string, c.width)
		for x := range grid[y] {
			grid[y][x] = " "
		}
	}
	for _, p := range c.particles {
		pos := p.proj.Position()
		x, y := int(pos.X), int(pos.Y)
		if y < 0 || y >= c.height || x < 0 || x >= c.width {
			continue
		}
		grid[y][x] = lipgloss.NewStyle().Foreground(lipgloss.Color(p.color)).Render(string(p.glyph))
	}
	lines := make([]string, c.height)
	for y, row := range grid {
		lines[y] = strings.Join(row, "")
	}
	return strings.Join(lines, "\n")
}

package tui

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/fyrsmithlabs/vault/internal/view"
	"github.com/lucasb-eyer/go-colorful"
)

const animationFPS = 60

// themeBlend animates the backdrop between the light and dark theme with a
// critically damped spring. pos 0 is light, 1 is dark.
type themeBlend struct {
	spring harmonica.Spring
	light  colorful.Color
	dark   colorful.Color
	pos    float64
	vel    float64
	target float64
}

func newThemeBlend() *themeBlend {
	light, _ := colorful.Hex(view.ThemeLight.Hex())
	dark, _ := colorful.Hex(view.ThemeDark.Hex())
	return &themeBlend{
		spring: harmonica.NewSpring(harmonica.FPS(animationFPS), 6.0, 1.0),
		light:  light,
		dark:   dark,
	}
}

// SetTarget points the spring at theme.
func (b *themeBlend) SetTarget(theme view.Theme) {
	if theme == view.ThemeDark {
		b.target = 1
		return
	}
	b.target = 0
}

// Step advances one frame and reports whether the blend is still moving.
func (b *themeBlend) Step() bool {
	b.pos, b.vel = b.spring.Update(b.pos, b.vel, b.target)
	if math.Abs(b.pos-b.target) < 0.001 && math.Abs(b.vel) < 0.001 {
		b.pos, b.vel = b.target, 0
		return false
	}
	return true
}

// Settled reports whether the blend rests on its target.
func (b *themeBlend) Settled() bool {
	return b.pos == b.target && b.vel == 0
}

// Background returns the current backdrop colour.
func (b *themeBlend) Background() string {
	switch {
	case b.pos <= 0:
		return b.light.Hex()
	case b.pos >= 1:
		return b.dark.Hex()
	}
	return b.light.BlendLab(b.dark, clamp01(b.pos)).Clamped().Hex()
}

// Foreground returns a text colour readable on the current backdrop.
func (b *themeBlend) Foreground() string {
	if b.pos > 0.5 {
		return "#fde2e4"
	}
	return "#5c1a2b"
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

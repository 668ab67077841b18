// Package audio plays the celebration track.
//
// Playback failures never stop the experience: callers log the error from
// Play and carry on.
package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/fyrsmithlabs/vault/internal/logging"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"go.uber.org/zap"
)

// ErrUnsupportedFormat is returned for track extensions other than .mp3 and .wav.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Sink is the audio output device.
type Sink interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
}

type speakerSink struct{}

func (speakerSink) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerSink) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerSink) Lock()                   { speaker.Lock() }
func (speakerSink) Unlock()                 { speaker.Unlock() }

// Player owns one celebration track.
type Player struct {
	cfg  config.AudioConfig
	sink Sink

	mu      sync.Mutex
	started bool
	inited  bool
	stream  beep.StreamSeekCloser
	ctrl    *beep.Ctrl
	vol     *effects.Volume
	level   float64
	cancel  context.CancelFunc
	done    chan struct{}
}

// Option configures a Player.
type Option func(*Player)

// WithSink replaces the system speaker.
func WithSink(s Sink) Option {
	return func(p *Player) { p.sink = s }
}

// NewPlayer creates a player for cfg.Track. An empty track makes Play a no-op.
func NewPlayer(cfg config.AudioConfig, opts ...Option) *Player {
	p := &Player{cfg: cfg, sink: speakerSink{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play starts the track silently and fades it in to MaxVolume in FadeStep
// increments every FadeInterval. Calls after the first successful one are
// no-ops.
func (p *Player) Play(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cfg.Track == "" || p.started {
		return nil
	}

	stream, format, err := decode(p.cfg.Track)
	if err != nil {
		return err
	}
	if !p.inited {
		if err := p.sink.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
			_ = stream.Close()
			return fmt.Errorf("init speaker: %w", err)
		}
		p.inited = true
	}

	p.stream = stream
	p.vol = &effects.Volume{Streamer: stream, Base: 2, Volume: 0, Silent: true}
	p.ctrl = &beep.Ctrl{Streamer: p.vol}
	p.level = 0
	p.sink.Play(p.ctrl)
	p.started = true

	fadeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.fade(fadeCtx, p.done)

	logging.FromContext(ctx).Info(ctx, "celebration track playing",
		zap.String("track", filepath.Base(p.cfg.Track)),
		zap.Int("sample_rate", int(format.SampleRate)),
	)
	return nil
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("open track: %w", err)
	}

	var (
		stream beep.StreamSeekCloser
		format beep.Format
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		stream, format, err = mp3.Decode(f)
	case ".wav":
		stream, format, err = wav.Decode(f)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		_ = f.Close()
		return nil, beep.Format{}, fmt.Errorf("decode track: %w", err)
	}
	return stream, format, nil
}

func (p *Player) fade(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.cfg.FadeInterval.Duration())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			next, more := NextLevel(p.level, p.cfg.FadeStep, p.cfg.MaxVolume)
			p.level = next
			vol := p.vol
			p.mu.Unlock()

			volume, silent := Gain(next)
			p.sink.Lock()
			vol.Volume = volume
			vol.Silent = silent
			p.sink.Unlock()

			if !more {
				return
			}
		}
	}
}

// NextLevel returns the linear level after one fade step and whether the
// fade continues.
func NextLevel(level, step, limit float64) (float64, bool) {
	if level >= limit {
		return limit, false
	}
	next := math.Min(level+step, limit)
	return next, next < limit
}

// Gain converts a linear level in [0,1] to the exponent of a base-2
// effects.Volume.
func Gain(level float64) (volume float64, silent bool) {
	if level <= 0 {
		return 0, true
	}
	return math.Log2(level), false
}

// Level returns the current linear volume.
func (p *Player) Level() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

// Close stops the fade and releases the track.
func (p *Player) Close() error {
	p.mu.Lock()
	cancel, done, stream := p.cancel, p.done, p.stream
	p.cancel, p.stream = nil, nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if stream == nil {
		return nil
	}
	p.sink.Lock()
	p.ctrl.Streamer = nil
	p.sink.Unlock()
	return stream.Close()
}

package audio

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fyrsmithlabs/vault/internal/config"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	sync.Mutex
	inits   int
	played  []beep.Streamer
	initErr error
}

func (f *fakeSink) Init(beep.SampleRate, int) error {
	f.inits++
	return f.initErr
}

func (f *fakeSink) Play(s ...beep.Streamer) {
	f.played = append(f.played, s...)
}

// silence streams n zero samples.
type silence struct{ n int }

func (s *silence) Stream(samples [][2]float64) (int, bool) {
	if s.n <= 0 {
		return 0, false
	}
	k := min(len(samples), s.n)
	for i := range samples[:k] {
		samples[i] = [2]float64{}
	}
	s.n -= k
	return k, true
}

func (s *silence) Err() error { return nil }

func writeTrack(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: 8000, NumChannels: 1, Precision: 2}
	require.NoError(t, wav.Encode(f, &silence{n: 8000}, format))
	require.NoError(t, f.Close())
	return path
}

func audioConfig(track string) config.AudioConfig {
	cfg := config.Default().Audio
	cfg.Track = track
	cfg.FadeInterval = config.Duration(time.Millisecond)
	return cfg
}

func TestNextLevel(t *testing.T) {
	level, steps := 0.0, 0
	for more := true; more; steps++ {
		level, more = NextLevel(level, 0.05, 0.5)
		require.LessOrEqual(t, level, 0.5)
	}
	assert.Equal(t, 0.5, level)
	assert.InDelta(t, 10, steps, 1)

	level, more := NextLevel(0.5, 0.05, 0.5)
	assert.Equal(t, 0.5, level)
	assert.False(t, more)
}

func TestGain(t *testing.T) {
	v, silent := Gain(0)
	assert.True(t, silent)
	assert.Equal(t, 0.0, v)

	v, silent = Gain(0.5)
	assert.False(t, silent)
	assert.Equal(t, -1.0, v)

	v, _ = Gain(1)
	assert.Equal(t, 0.0, v)
}

func TestPlay_NoTrackIsNoop(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayer(audioConfig(""), WithSink(sink))
	assert.NoError(t, p.Play(context.Background()))
	assert.Equal(t, 0, sink.inits)
	assert.NoError(t, p.Close())
}

func TestPlay_MissingTrack(t *testing.T) {
	p := NewPlayer(audioConfig(filepath.Join(t.TempDir(), "nope.mp3")), WithSink(&fakeSink{}))
	err := p.Play(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open track")
}

func TestPlay_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.ogg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	p := NewPlayer(audioConfig(path), WithSink(&fakeSink{}))
	assert.ErrorIs(t, p.Play(context.Background()), ErrUnsupportedFormat)
}

func TestPlay_SpeakerFailure(t *testing.T) {
	sink := &fakeSink{initErr: assert.AnError}
	p := NewPlayer(audioConfig(writeTrack(t)), WithSink(sink))
	err := p.Play(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Empty(t, sink.played)
}

func TestPlay_FadesInOnce(t *testing.T) {
	sink := &fakeSink{}
	p := NewPlayer(audioConfig(writeTrack(t)), WithSink(sink))
	ctx := context.Background()

	require.NoError(t, p.Play(ctx))
	require.NoError(t, p.Play(ctx))
	assert.Equal(t, 1, sink.inits)
	assert.Len(t, sink.played, 1)

	assert.Eventually(t, func() bool { return p.Level() == 0.5 }, time.Second, time.Millisecond)
	require.NoError(t, p.Close())
}

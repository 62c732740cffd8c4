// Package beeper implements the sound timer capability. Start loads an
// 8-bit countdown; while it is above zero a 440Hz tone plays through the
// speaker. The beeper decrements itself at 60Hz, so the executor only ever
// calls Start.
package beeper

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate beep.SampleRate = 44100
	toneHz                     = 440
	amplitude                  = 0.25
	tickRate                   = time.Second / 60
)

// Beeper generates its tone rather than decoding an asset: a sine streamer
// stays registered with the speaker for the life of the process and emits
// silence whenever the countdown is zero.
type Beeper struct {
	mu        sync.Mutex
	remaining uint8
	phase     float64

	ticker *time.Ticker
	done   chan struct{}
}

// New initializes the speaker, registers the tone streamer, and starts the
// 60Hz countdown.
func New() (*Beeper, error) {
	b := &Beeper{
		ticker: time.NewTicker(tickRate),
		done:   make(chan struct{}),
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(beep.StreamerFunc(b.stream))
	go b.countdown()
	return b, nil
}

// Start loads the countdown with v. The tone is audible until v ticks have
// elapsed; Start(0) silences it immediately.
func (b *Beeper) Start(v uint8) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.remaining = v
}

// Close stops the countdown goroutine. The speaker keeps streaming silence.
func (b *Beeper) Close() {
	b.ticker.Stop()
	close(b.done)
	b.mu.Lock()
	b.remaining = 0
	b.mu.Unlock()
}

func (b *Beeper) countdown() {
	for {
		select {
		case <-b.ticker.C:
			b.tick()
		case <-b.done:
			return
		}
	}
}

func (b *Beeper) tick() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.remaining > 0 {
		b.remaining--
	}
}

// stream fills the speaker buffer: a sine wave while the countdown runs,
// silence otherwise. Phase carries across calls so the tone has no seams.
func (b *Beeper) stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.remaining == 0 {
		for i := range samples {
			samples[i] = [2]float64{}
		}
		return len(samples), true
	}

	step := 2 * math.Pi * toneHz / float64(sampleRate)
	for i := range samples {
		s := amplitude * math.Sin(b.phase)
		samples[i][0] = s
		samples[i][1] = s
		b.phase += step
	}
	// keep the accumulator small over long runs
	b.phase = math.Mod(b.phase, 2*math.Pi)
	return len(samples), true
}

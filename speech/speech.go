// Package speech models spoken playback as a small state machine over an
// external synthesizer. Playback is {idle, speaking, paused}; starting new
// speech while already speaking is dropped, not queued.
package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"
	"time"
)

// State is the playback state.
type State int

const (
	Idle State = iota
	Speaking
	Paused
)

func (s State) String() string {
	switch s {
	case Speaking:
		return "speaking"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

// Synthesizer produces audio for one utterance, blocking until done or the
// context is cancelled.
type Synthesizer interface {
	Speak(ctx context.Context, text string) error
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, text string) error

func (f SynthesizerFunc) Speak(ctx context.Context, text string) error { return f(ctx, text) }

// NewExecSynthesizer returns a Synthesizer that shells out to an external
// TTS command (e.g. "say", "espeak"), passing the text as the final
// argument. An empty command yields a no-op synthesizer.
func NewExecSynthesizer(command string) Synthesizer {
	fields := strings.Fields(command)
	return SynthesizerFunc(func(ctx context.Context, text string) error {
		if len(fields) == 0 {
			return nil
		}
		args := append(append([]string{}, fields[1:]...), text)
		return exec.CommandContext(ctx, fields[0], args...).Run()
	})
}

// replayGap is the fixed pause between utterances in a replay sequence.
const replayGap = 100 * time.Millisecond

// ErrBusy is returned when Speak is called while already speaking or paused.
var ErrBusy = errors.New("speech in progress")

// Player drives a Synthesizer through the playback state machine with
// external pause/resume/cancel controls.
type Player struct {
	synth Synthesizer

	mu     sync.Mutex
	state  State
	cancel context.CancelFunc
	paused chan struct{} // closed on resume; nil when not paused
}

// NewPlayer creates a player over the given synthesizer.
func NewPlayer(synth Synthesizer) *Player {
	return &Player{synth: synth}
}

// State returns the current playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Speak starts speaking text asynchronously. If playback is already in
// progress the request is dropped and ErrBusy returned.
func (p *Player) Speak(text string) error {
	return p.start([]string{text})
}

// Replay speaks a sequence of utterances in order with a fixed gap between
// them. Unlike Speak it is the only way to queue multiple utterances; the
// sequence can be interrupted only by Cancel.
func (p *Player) Replay(texts []string) error {
	return p.start(texts)
}

func (p *Player) start(texts []string) error {
	p.mu.Lock()
	if p.state != Idle {
		p.mu.Unlock()
		return ErrBusy
	}
	ctx, cancel := context.WithCancel(context.Background())
	p.state = Speaking
	p.cancel = cancel
	p.mu.Unlock()

	go p.run(ctx, texts)
	return nil
}

func (p *Player) run(ctx context.Context, texts []string) {
	defer func() {
		p.mu.Lock()
		p.state = Idle
		p.cancel = nil
		p.paused = nil
		p.mu.Unlock()
	}()

	for i, text := range texts {
		if i > 0 {
			select {
			case <-time.After(replayGap):
			case <-ctx.Done():
				return
			}
		}
		if !p.waitIfPaused(ctx) {
			return
		}
		if err := p.synth.Speak(ctx, text); err != nil {
			return
		}
	}
}

// waitIfPaused blocks while the player is paused. Returns false if the
// context was cancelled while waiting.
func (p *Player) waitIfPaused(ctx context.Context) bool {
	p.mu.Lock()
	resumed := p.paused
	p.mu.Unlock()
	if resumed == nil {
		return true
	}
	select {
	case <-resumed:
		return true
	case <-ctx.Done():
		return false
	}
}

// Pause pauses playback before the next utterance. Pausing while idle is a
// no-op. The current utterance is not interrupted mid-word; the pause takes
// effect at the next utterance boundary.
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Speaking {
		return
	}
	p.state = Paused
	p.paused = make(chan struct{})
}

// Resume continues paused playback. Resuming while not paused is a no-op.
func (p *Player) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != Paused {
		return
	}
	p.state = Speaking
	close(p.paused)
	p.paused = nil
}

// Cancel stops playback entirely, including a replay sequence.
func (p *Player) Cancel() {
	p.mu.Lock()
	cancel := p.cancel
	if p.paused != nil {
		close(p.paused)
		p.paused = nil
	}
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/voxaline/live-core/core/audio"
	"github.com/voxaline/live-core/core/events"
)

// playbackScheduler turns independently-arriving audio payloads into one
// gapless audible stream. It exclusively owns the next-free slot on the
// output clock and the set of live sources; nothing else mutates either.
type playbackScheduler struct {
	sink audio.PlaybackSink
	emit eventEmitter

	mu         sync.Mutex
	nextFreeAt time.Duration
	live       map[string]audio.PlaybackHandle
}

func newPlaybackScheduler(sink audio.PlaybackSink, emit eventEmitter) *playbackScheduler {
	if emit == nil {
		emit = noopEventEmitter
	}
	return &playbackScheduler{
		sink: sink,
		emit: emit,
		live: map[string]audio.PlaybackHandle{},
	}
}

// Enqueue validates one inbound payload and schedules it right after the last
// scheduled buffer, or immediately if the timeline has drained. A malformed
// payload is rejected without touching the timeline.
func (p *playbackScheduler) Enqueue(payload []byte) error {
	if p.sink == nil {
		return nil
	}

	samples, err := audio.DecodePCM16(payload)
	if err != nil {
		return fmt.Errorf("failed to decode playback payload: %w", err)
	}
	if len(samples) == 0 {
		return nil
	}

	info := p.sink.EncodingInfo()
	duration := info.Duration(payload)

	p.mu.Lock()
	defer p.mu.Unlock()

	start := p.sink.Now()
	if p.nextFreeAt > start {
		start = p.nextFreeAt
	}

	id := uuid.NewString()
	handle, err := p.sink.Schedule(payload, start, func() { p.finish(id) })
	if err != nil {
		return fmt.Errorf("failed to schedule playback: %w", err)
	}

	p.live[id] = handle
	p.nextFreeAt = start + duration
	return nil
}

func (p *playbackScheduler) finish(id string) {
	p.mu.Lock()
	if _, ok := p.live[id]; !ok {
		// Already stopped by an interruption or teardown.
		p.mu.Unlock()
		return
	}
	delete(p.live, id)
	empty := len(p.live) == 0
	p.mu.Unlock()

	if empty {
		p.emit(events.NewOutputLevelChanged(0))
	}
}

// Interrupt preempts all current and queued playback. The next-free slot
// resets to the current output clock, never into the past, so audio scheduled
// afterwards starts immediately.
func (p *playbackScheduler) Interrupt() {
	p.mu.Lock()
	stopped := len(p.live)
	for id, handle := range p.live {
		handle.Stop()
		delete(p.live, id)
	}
	if p.sink != nil {
		p.nextFreeAt = p.sink.Now()
	}
	p.mu.Unlock()

	p.emit(events.NewOutputLevelChanged(0))
	p.emit(events.NewPlaybackInterrupted(stopped))
}

// TurnComplete signals that the remote side stopped speaking. Queued audio
// keeps playing.
func (p *playbackScheduler) TurnComplete() {
	p.emit(events.NewOutputLevelChanged(0))
	p.emit(events.NewTurnCompleted())
}

// Flush stops everything without emitting playback events. Used on session
// teardown.
func (p *playbackScheduler) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for id, handle := range p.live {
		handle.Stop()
		delete(p.live, id)
	}
	p.nextFreeAt = 0
}

// LiveCount reports the number of currently scheduled or playing sources.
func (p *playbackScheduler) LiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.live)
}

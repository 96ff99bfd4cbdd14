package session

import (
	"sync"
	"testing"
	"time"

	"github.com/voxaline/live-core/core/audio"
	"github.com/voxaline/live-core/core/events"
)

type stubSink struct {
	mu      sync.Mutex
	now     time.Duration
	buffers []*stubBuffer
	closed  bool
}

type stubBuffer struct {
	start    time.Duration
	duration time.Duration
	onDone   func()
	stopped  bool
	done     bool
}

func (s *stubSink) EncodingInfo() audio.EncodingInfo {
	return audio.EncodingInfo{SampleRate: 24000, Format: audio.EncodingLinear16}
}

func (s *stubSink) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *stubSink) Schedule(pcm []byte, at time.Duration, onDone func()) (audio.PlaybackHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buffer := &stubBuffer{start: at, duration: s.EncodingInfo().Duration(pcm), onDone: onDone}
	s.buffers = append(s.buffers, buffer)
	return buffer, nil
}

func (s *stubSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *stubSink) advance(by time.Duration) {
	s.mu.Lock()
	s.now += by
	s.mu.Unlock()
}

func (s *stubSink) buffer(i int) *stubBuffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers[i]
}

func (s *stubSink) scheduled() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers)
}

func (b *stubBuffer) Stop() { b.stopped = true }

func (b *stubBuffer) finish() {
	if b.done {
		return
	}
	b.done = true
	b.onDone()
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) emit(event events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) kinds() []events.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()

	kinds := make([]events.Kind, 0, len(r.events))
	for _, event := range r.events {
		kinds = append(kinds, event.Kind())
	}
	return kinds
}

func (r *eventRecorder) count(kind events.Kind) int {
	count := 0
	for _, k := range r.kinds() {
		if k == kind {
			count++
		}
	}
	return count
}

// pcm returns a valid little-endian payload playing for the given duration at
// the stub sink's 24kHz rate.
func pcm(duration time.Duration) []byte {
	samples := int(float64(duration) / float64(time.Second) * 24000)
	return make([]byte, samples*2)
}

func TestPlaybackSchedulesBackToBack(t *testing.T) {
	sink := &stubSink{}
	scheduler := newPlaybackScheduler(sink, nil)

	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}
	if err := scheduler.Enqueue(pcm(50 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}
	if err := scheduler.Enqueue(pcm(25 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}

	if got := sink.scheduled(); got != 3 {
		t.Fatalf("expected 3 scheduled buffers, got %d", got)
	}
	starts := []time.Duration{sink.buffer(0).start, sink.buffer(1).start, sink.buffer(2).start}
	if starts[0] != 0 {
		t.Errorf("expected first buffer at 0, got %v", starts[0])
	}
	if starts[1] != 100*time.Millisecond {
		t.Errorf("expected second buffer at 100ms, got %v", starts[1])
	}
	if starts[2] != 150*time.Millisecond {
		t.Errorf("expected third buffer at 150ms, got %v", starts[2])
	}
	if got := scheduler.LiveCount(); got != 3 {
		t.Errorf("expected 3 live sources, got %d", got)
	}
}

func TestPlaybackResumesAtClockAfterDrain(t *testing.T) {
	sink := &stubSink{}
	scheduler := newPlaybackScheduler(sink, nil)

	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}
	sink.advance(250 * time.Millisecond)
	sink.buffer(0).finish()

	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}
	if got := sink.buffer(1).start; got != 250*time.Millisecond {
		t.Errorf("expected buffer at the output clock (250ms), got %v", got)
	}
}

func TestPlaybackInterruptStopsEverything(t *testing.T) {
	sink := &stubSink{}
	recorder := &eventRecorder{}
	scheduler := newPlaybackScheduler(sink, recorder.emit)

	for range 3 {
		if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
			t.Fatalf("unexpected enqueue error: %v", err)
		}
	}
	sink.advance(50 * time.Millisecond)

	scheduler.Interrupt()

	if got := scheduler.LiveCount(); got != 0 {
		t.Fatalf("expected no live sources after interrupt, got %d", got)
	}
	for i := range 3 {
		if !sink.buffer(i).stopped {
			t.Errorf("expected buffer %d to be stopped", i)
		}
	}
	if got := recorder.count(events.KindPlaybackInterrupted); got != 1 {
		t.Errorf("expected one interruption event, got %d", got)
	}
	if got := recorder.count(events.KindOutputLevelChanged); got == 0 {
		t.Errorf("expected an output level reset event")
	}

	// The timeline resets to the output clock, not into the past.
	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}
	if got := sink.buffer(3).start; got != 50*time.Millisecond {
		t.Errorf("expected buffer at the output clock (50ms), got %v", got)
	}
}

func TestPlaybackRejectsMalformedPayload(t *testing.T) {
	sink := &stubSink{}
	scheduler := newPlaybackScheduler(sink, nil)

	if err := scheduler.Enqueue(make([]byte, 3)); err == nil {
		t.Fatalf("expected an error for an odd-length payload")
	}
	if got := sink.scheduled(); got != 0 {
		t.Errorf("expected no scheduled buffers, got %d", got)
	}
	if got := scheduler.LiveCount(); got != 0 {
		t.Errorf("expected no live sources, got %d", got)
	}
}

func TestPlaybackSignalsIdleWhenDrained(t *testing.T) {
	sink := &stubSink{}
	recorder := &eventRecorder{}
	scheduler := newPlaybackScheduler(sink, recorder.emit)

	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}
	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}

	sink.buffer(0).finish()
	if got := recorder.count(events.KindOutputLevelChanged); got != 0 {
		t.Errorf("expected no idle signal while a source is still live, got %d events", got)
	}

	sink.buffer(1).finish()
	if got := recorder.count(events.KindOutputLevelChanged); got != 1 {
		t.Errorf("expected one idle signal once drained, got %d events", got)
	}

	// A late stop on a finished buffer must not disturb the drained state.
	scheduler.Interrupt()
	if got := recorder.count(events.KindPlaybackInterrupted); got != 1 {
		t.Errorf("expected one interruption event, got %d", got)
	}
}

func TestPlaybackTurnCompleteKeepsQueuedAudio(t *testing.T) {
	sink := &stubSink{}
	recorder := &eventRecorder{}
	scheduler := newPlaybackScheduler(sink, recorder.emit)

	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}

	scheduler.TurnComplete()

	if got := recorder.count(events.KindTurnCompleted); got != 1 {
		t.Errorf("expected one turn completion event, got %d", got)
	}
	if sink.buffer(0).stopped {
		t.Errorf("expected queued audio to keep playing after turn completion")
	}
	if got := scheduler.LiveCount(); got != 1 {
		t.Errorf("expected 1 live source, got %d", got)
	}
}

func TestPlaybackFlushIsSilent(t *testing.T) {
	sink := &stubSink{}
	recorder := &eventRecorder{}
	scheduler := newPlaybackScheduler(sink, recorder.emit)

	if err := scheduler.Enqueue(pcm(100 * time.Millisecond)); err != nil {
		t.Fatalf("unexpected enqueue error: %v", err)
	}

	scheduler.Flush()

	if got := scheduler.LiveCount(); got != 0 {
		t.Errorf("expected no live sources after flush, got %d", got)
	}
	if !sink.buffer(0).stopped {
		t.Errorf("expected the buffer to be stopped")
	}
	if got := len(recorder.kinds()); got != 0 {
		t.Errorf("expected no events from flush, got %d", got)
	}
}

package session

import (
	"bytes"
	"errors"
	"testing"

	"github.com/voxaline/live-core/core/audio"
	"github.com/voxaline/live-core/core/events"
	"github.com/voxaline/live-core/core/transport"
	"github.com/voxaline/live-core/internal/futures"
)

func TestCaptureEncodesAndTagsBlocks(t *testing.T) {
	sess := &stubSession{}
	pending := futures.New[transport.Session]()
	pending.Resolve(sess)
	capture := newCapturePipeline(pending, nil)

	samples := []float32{0, 0.5, -0.5, 1, -1}
	capture.OnBlock(samples, 48000)

	if got := sess.mediaCount(); got != 1 {
		t.Fatalf("expected 1 outbound chunk, got %d", got)
	}
	chunk := sess.media(0)
	if chunk.MIMEType != "audio/pcm;rate=48000" {
		t.Errorf("expected chunk tagged with the granted rate, got %q", chunk.MIMEType)
	}
	if !bytes.Equal(chunk.Data, audio.EncodePCM16(samples)) {
		t.Errorf("expected the encoded block as payload")
	}
}

func TestCaptureFallsBackToDefaultRate(t *testing.T) {
	sess := &stubSession{}
	pending := futures.New[transport.Session]()
	pending.Resolve(sess)
	capture := newCapturePipeline(pending, nil)

	capture.OnBlock([]float32{0.25}, 0)

	if got := sess.media(0).MIMEType; got != "audio/pcm;rate=16000" {
		t.Errorf("expected the default rate tag, got %q", got)
	}
}

func TestCaptureDropsBlocksUntilSessionReady(t *testing.T) {
	sess := &stubSession{}
	pending := futures.New[transport.Session]()
	recorder := &eventRecorder{}
	capture := newCapturePipeline(pending, recorder.emit)

	capture.OnBlock([]float32{0.5, 0.5}, 16000)
	if got := sess.mediaCount(); got != 0 {
		t.Fatalf("expected blocks to be dropped before the session resolves, got %d chunks", got)
	}
	if got := recorder.count(events.KindInputLevelChanged); got != 1 {
		t.Errorf("expected a loudness update even while dropping, got %d", got)
	}

	pending.Resolve(sess)
	capture.OnBlock([]float32{0.5, 0.5}, 16000)
	if got := sess.mediaCount(); got != 1 {
		t.Errorf("expected 1 outbound chunk once resolved, got %d", got)
	}
}

func TestCaptureToleratesSendFailures(t *testing.T) {
	sess := &stubSession{sendMediaErr: errors.New("socket gone")}
	pending := futures.New[transport.Session]()
	pending.Resolve(sess)
	capture := newCapturePipeline(pending, nil)

	capture.OnBlock([]float32{0.5}, 16000)
	capture.OnBlock([]float32{0.5}, 16000)

	if got := sess.mediaCount(); got != 0 {
		t.Errorf("expected failed sends dropped, got %d chunks", got)
	}
}

func TestCaptureEmitsLoudnessPerBlock(t *testing.T) {
	pending := futures.New[transport.Session]()
	pending.Reject(errors.New("never opened"))
	recorder := &eventRecorder{}
	capture := newCapturePipeline(pending, recorder.emit)

	samples := []float32{0.5, -0.5, 0.5, -0.5}
	capture.OnBlock(samples, 16000)
	capture.OnBlock(make([]float32, 4), 16000)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	if len(recorder.events) != 2 {
		t.Fatalf("expected 2 loudness updates, got %d events", len(recorder.events))
	}
	first, ok := recorder.events[0].(events.InputLevelChanged)
	if !ok {
		t.Fatalf("expected an input level event, got %T", recorder.events[0])
	}
	if want := audio.RMS(samples); first.Level != want {
		t.Errorf("expected level %v, got %v", want, first.Level)
	}
	second := recorder.events[1].(events.InputLevelChanged)
	if second.Level != 0 {
		t.Errorf("expected silence to report level 0, got %v", second.Level)
	}
}

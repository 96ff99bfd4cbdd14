package session

import (
	"fmt"

	"github.com/voxaline/live-core/core/audio"
	"github.com/voxaline/live-core/core/events"
	"github.com/voxaline/live-core/core/transport"
	"github.com/voxaline/live-core/internal/futures"
)

// capturePipeline turns captured microphone blocks into outbound media
// chunks and a continuous loudness signal. One pipeline is created per
// connection attempt and bound to that attempt's pending session.
//
// Real-time audio has no backpressure: a block that arrives before the
// session resolves is dropped, never queued or retried.
type capturePipeline struct {
	session *futures.Pending[transport.Session]
	emit    eventEmitter
}

func newCapturePipeline(session *futures.Pending[transport.Session], emit eventEmitter) *capturePipeline {
	if emit == nil {
		emit = noopEventEmitter
	}
	return &capturePipeline{session: session, emit: emit}
}

// OnBlock processes one captured block. It must complete well within the
// block duration to avoid capture dropouts.
func (p *capturePipeline) OnBlock(samples []float32, sampleRate int) {
	if p == nil {
		return
	}

	p.emit(events.NewInputLevelChanged(audio.RMS(samples)))

	sess, ok := p.session.TryGet()
	if !ok {
		return
	}

	if sampleRate <= 0 {
		sampleRate = audio.DefaultSampleRate
	}
	chunk := transport.MediaChunk{
		Data:     audio.EncodePCM16(samples),
		MIMEType: fmt.Sprintf("audio/pcm;rate=%d", sampleRate),
	}
	if err := sess.SendMedia(chunk); err != nil {
		logger.Debug("dropping capture block", "error", err)
	}
}

package audio

import "time"

// PlaybackHandle controls one scheduled buffer. Stop discards any unplayed
// remainder; stopping an already-finished buffer is a no-op.
type PlaybackHandle interface {
	Stop()
}

// PlaybackSink schedules PCM buffers for playback against a monotonic output
// clock. Implementations own the device; schedulers own the timeline.
type PlaybackSink interface {
	EncodingInfo() EncodingInfo

	// Now reports the current position of the output clock. The clock is
	// monotonic and starts at zero when the sink is created.
	Now() time.Duration

	// Schedule queues pcm to start playing at the given clock offset. onDone
	// fires once, after the buffer finishes playing naturally; it does not
	// fire for stopped buffers.
	Schedule(pcm []byte, at time.Duration, onDone func()) (PlaybackHandle, error)

	Close() error
}

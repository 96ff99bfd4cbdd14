package events

const (
	// KindInputLevelChanged identifies capture loudness updates.
	KindInputLevelChanged Kind = "capture.input_level_changed"
	// KindOutputLevelChanged identifies playback loudness updates.
	KindOutputLevelChanged Kind = "playback.output_level_changed"
	// KindPlaybackInterrupted identifies remote playback preemption.
	KindPlaybackInterrupted Kind = "playback.interrupted"
	// KindTurnCompleted identifies remote turn completion.
	KindTurnCompleted Kind = "playback.turn_completed"
)

// InputLevelChanged carries the loudness of the latest captured block.
type InputLevelChanged struct {
	Base
	Level float64
}

// NewInputLevelChanged creates an input level event.
func NewInputLevelChanged(level float64) InputLevelChanged {
	return InputLevelChanged{Base: NewBase(KindInputLevelChanged), Level: level}
}

// OutputLevelChanged carries the loudness of remote speech playback.
type OutputLevelChanged struct {
	Base
	Level float64
}

// NewOutputLevelChanged creates an output level event.
func NewOutputLevelChanged(level float64) OutputLevelChanged {
	return OutputLevelChanged{Base: NewBase(KindOutputLevelChanged), Level: level}
}

// PlaybackInterrupted marks remote preemption of all live playback.
type PlaybackInterrupted struct {
	Base
	// Stopped is the number of live sources stopped by the interruption.
	Stopped int
}

// NewPlaybackInterrupted creates a playback interruption event.
func NewPlaybackInterrupted(stopped int) PlaybackInterrupted {
	return PlaybackInterrupted{Base: NewBase(KindPlaybackInterrupted), Stopped: stopped}
}

// TurnCompleted marks the end of the remote side's turn.
type TurnCompleted struct {
	Base
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted() TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted)}
}

// Package events defines the typed session event contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - session.*
//   - log.*
//   - capture.*
//   - playback.*
//   - tool_call.*
//   - presentation.*
//
// Semantics used across the package:
//
//   - Level: root-mean-square loudness scalar in [0, 1] for linear audio.
//   - Notice: ephemeral human-facing string; consumers decide display lifetime.
//
// session events
//
//   - SessionStateChanged (session.state_changed): the connection state
//     machine moved to a new state.
//
// log events
//
//   - LogAppended (log.appended): an immutable entry was appended to the
//     session log.
//
// capture events
//
//   - InputLevelChanged (capture.input_level_changed): loudness of the latest
//     captured microphone block.
//
// playback events
//
//   - OutputLevelChanged (playback.output_level_changed): loudness of remote
//     speech playback; 0 signals "not speaking".
//   - PlaybackInterrupted (playback.interrupted): the remote side preempted
//     all current and queued playback.
//   - TurnCompleted (playback.turn_completed): the remote side finished its
//     turn; queued audio keeps playing.
//
// tool_call events
//
//   - ToolCallStarted (tool_call.started): tool execution started.
//   - ToolCallCompleted (tool_call.completed): tool execution completed.
//   - ToolCallFailed (tool_call.failed): tool execution failed.
//   - ToolActionNotice (tool_call.action_notice): human-facing summary of a
//     tool invocation.
//
// presentation events
//
//   - ThemeChanged (presentation.theme_changed): the remote side requested a
//     presentation mode change.
//   - OpenURLRequested (presentation.open_url_requested): the remote side
//     requested an external resource to be opened.
package events

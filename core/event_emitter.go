package session

import "github.com/voxaline/live-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(opts ObserveOptions) eventEmitter {
	return func(event events.Event) {
		switch typedEvent := event.(type) {
		case events.SessionStateChanged:
			if opts.onStateChanged != nil {
				opts.onStateChanged(SessionState(typedEvent.State))
			}
		case events.LogAppended:
			if opts.onLog != nil {
				opts.onLog(typedEvent.Entry)
			}
		case events.InputLevelChanged:
			if opts.onInputLevel != nil {
				opts.onInputLevel(typedEvent.Level)
			}
		case events.OutputLevelChanged:
			if opts.onOutputLevel != nil {
				opts.onOutputLevel(typedEvent.Level)
			}
		case events.PlaybackInterrupted:
			if opts.onInterrupted != nil {
				opts.onInterrupted()
			}
		case events.TurnCompleted:
			if opts.onTurnCompleted != nil {
				opts.onTurnCompleted()
			}
		case events.ToolActionNotice:
			if opts.onToolAction != nil {
				opts.onToolAction(typedEvent.Summary)
			}
		case events.ToolCallStarted:
			if opts.onToolCallStarted != nil {
				opts.onToolCallStarted(typedEvent.ID, typedEvent.Name, typedEvent.Arguments)
			}
		case events.ToolCallCompleted:
			if opts.onToolCallCompleted != nil {
				opts.onToolCallCompleted(typedEvent.ID, typedEvent.Name, typedEvent.Response)
			}
		case events.ToolCallFailed:
			if opts.onToolCallFailed != nil {
				opts.onToolCallFailed(typedEvent.ID, typedEvent.Name, typedEvent.Error)
			}
		case events.ThemeChanged:
			if opts.onThemeChanged != nil {
				opts.onThemeChanged(typedEvent.Theme)
			}
		case events.OpenURLRequested:
			if opts.onOpenURL != nil {
				opts.onOpenURL(typedEvent.URL)
			}
		}
	}
}

package events

const (
	// KindThemeChanged identifies presentation mode changes.
	KindThemeChanged Kind = "presentation.theme_changed"
	// KindOpenURLRequested identifies external resource open requests.
	KindOpenURLRequested Kind = "presentation.open_url_requested"
)

// ThemeChanged marks a remote request to switch the presentation mode.
type ThemeChanged struct {
	Base
	Theme string
}

// NewThemeChanged creates a theme change event.
func NewThemeChanged(theme string) ThemeChanged {
	return ThemeChanged{Base: NewBase(KindThemeChanged), Theme: theme}
}

// OpenURLRequested marks a remote request to open an external resource.
type OpenURLRequested struct {
	Base
	URL string
}

// NewOpenURLRequested creates an open URL request event.
func NewOpenURLRequested(url string) OpenURLRequested {
	return OpenURLRequested{Base: NewBase(KindOpenURLRequested), URL: url}
}

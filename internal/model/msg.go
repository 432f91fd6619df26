package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// ViewsLoadedMsg is sent when the breed view history is loaded.
type ViewsLoadedMsg struct {
	Views map[string]BreedView
}

// ViewRecordedMsg is sent after a gallery visit was stored.
type ViewRecordedMsg struct {
	View BreedView
}

// ViewDeletedMsg is sent after the view history of a breed was cleared.
type ViewDeletedMsg struct {
	BreedKey string
}

// PreviewLoadedMsg is sent when an image preview has been rendered.
type PreviewLoadedMsg struct {
	URL   string
	Art   string
	Width int
}

// PreviewFailedMsg is sent when an image preview could not be rendered.
type PreviewFailedMsg struct {
	URL string
	Err error
}

// Screen represents different app screens.
type Screen int

const (
	ScreenBreeds Screen = iota
	ScreenGallery
)

func (s Screen) String() string {
	switch s {
	case ScreenBreeds:
		return "breeds"
	case ScreenGallery:
		return "gallery"
	default:
		return "unknown"
	}
}

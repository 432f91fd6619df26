package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"woof/internal/gallery"
	"woof/internal/model"
	"woof/internal/util"
)

// GalleryModel represents the image gallery of one breed.
type GalleryModel struct {
	breed  model.Breed
	view   model.BreedView
	state  gallery.ViewState
	cursor int
	offset int

	showPreview bool
	previews    map[string]string
	previewErrs map[string]string
	pending     map[string]bool
}

// NewGalleryModel creates a gallery screen for breed.
func NewGalleryModel(breed model.Breed, showPreview bool) *GalleryModel {
	return &GalleryModel{
		breed:       breed,
		state:       gallery.Loading{},
		showPreview: showPreview,
		previews:    make(map[string]string),
		previewErrs: make(map[string]string),
		pending:     make(map[string]bool),
	}
}

// BreedKey returns the key of the shown breed.
func (m *GalleryModel) BreedKey() string { return m.breed.Key }

// SetState applies a new gallery view state.
func (m *GalleryModel) SetState(s gallery.ViewState) {
	m.state = s
	if n := len(m.urls()); m.cursor >= n {
		m.cursor = max(0, n-1)
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

// SetView updates the view history shown in the header.
func (m *GalleryModel) SetView(v model.BreedView) { m.view = v }

// TogglePreview flips the preview pane and returns the new setting.
func (m *GalleryModel) TogglePreview() bool {
	m.showPreview = !m.showPreview
	return m.showPreview
}

// PreviewWanted reports the selected URL when the preview pane is visible
// and has nothing rendered for it yet.
func (m *GalleryModel) PreviewWanted() (string, bool) {
	url, ok := m.SelectedURL()
	if !ok || !m.showPreview {
		return "", false
	}
	if _, done := m.previews[url]; done {
		return "", false
	}
	if _, failed := m.previewErrs[url]; failed {
		return "", false
	}
	if m.pending[url] {
		return "", false
	}
	return url, true
}

// MarkPreviewPending records that a preview for url is being rendered.
func (m *GalleryModel) MarkPreviewPending(url string) {
	m.pending[url] = true
}

// SetPreview stores rendered art for url.
func (m *GalleryModel) SetPreview(url, art string) {
	m.previews[url] = art
	delete(m.previewErrs, url)
	delete(m.pending, url)
}

// SetPreviewError records a failed preview for url.
func (m *GalleryModel) SetPreviewError(url string, err error) {
	m.previewErrs[url] = err.Error()
	delete(m.pending, url)
}

func (m *GalleryModel) urls() []string {
	if s, ok := m.state.(gallery.Success); ok {
		return s.ImageURLs
	}
	return nil
}

// SelectedURL returns the image URL under the cursor.
func (m *GalleryModel) SelectedURL() (string, bool) {
	urls := m.urls()
	if len(urls) == 0 || m.cursor >= len(urls) {
		return "", false
	}
	return urls[m.cursor], true
}

// MoveDown moves the cursor down.
func (m *GalleryModel) MoveDown() {
	if m.cursor < len(m.urls())-1 {
		m.cursor++
	}
}

// MoveUp moves the cursor up.
func (m *GalleryModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
}

// JumpToTop jumps to the first image.
func (m *GalleryModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last image.
func (m *GalleryModel) JumpToBottom() {
	if n := len(m.urls()); n > 0 {
		m.cursor = n - 1
	}
}

// PreviewSize returns the cell size of the preview pane for a screen area.
func (m *GalleryModel) PreviewSize(width, height int) (int, int) {
	return max(10, width/2-6), max(4, height-8)
}

// View renders the gallery.
func (m *GalleryModel) View(width, height int, spinner string) string {
	var fields []string
	fields = append(fields, renderField("Breed", m.breed.DisplayName))
	fields = append(fields, renderField("Key", m.breed.Key))
	if m.breed.IsSubBreed() {
		fields = append(fields, renderField("Parent", m.breed.Parent()))
	}
	viewed := "First visit"
	if m.view.ViewCount > 1 {
		viewed = fmt.Sprintf("Viewed %d times", m.view.ViewCount)
	}
	fields = append(fields, LabelStyle.Render("History:")+" "+NormalRowStyle.Render(viewed))
	info := strings.Join(fields, "\n")

	var body string
	switch s := m.state.(type) {
	case gallery.Loading:
		body = NormalRowStyle.Render(spinner + " Fetching images…")
	case gallery.Error:
		body = ErrorStyle.Render("Could not load images: "+s.Message) + "\n" +
			HelpDescStyle.Render("Press 'r' to try again.")
	case gallery.Success:
		body = m.renderList(s, width, height-lipgloss.Height(info)-6)
	}

	left := lipgloss.JoinVertical(lipgloss.Left, info, "", body)
	if !m.showPreview {
		return PanelStyle.Width(width - 4).Render(left)
	}

	leftWidth := width/2 - 2
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		PanelStyle.Width(leftWidth).Render(left),
		ActivePanelStyle.Width(width-leftWidth-6).Render(m.renderPreview(spinner)),
	)
}

func (m *GalleryModel) renderList(s gallery.Success, width, height int) string {
	header := LabelStyle.Render(util.FormatImageCount(len(s.ImageURLs)))
	if s.IsRefreshing {
		header += RefreshingStyle.Render("  ⟳ refreshing…")
	}
	if len(s.ImageURLs) == 0 {
		return header + "\n" + HelpDescStyle.Render("The API returned no images for this breed.")
	}

	height = max(1, height)
	if m.cursor >= m.offset+height {
		m.offset = m.cursor - height + 1
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}

	maxURL := max(10, width-12)
	if m.showPreview {
		maxURL = max(10, width/2-12)
	}

	var lines []string
	for i := m.offset; i < len(s.ImageURLs) && i < m.offset+height; i++ {
		line := fmt.Sprintf("%2d  %s", i+1, util.TruncateString(s.ImageURLs[i], maxURL))
		if i == m.cursor {
			lines = append(lines, SelectedRowStyle.Render(line))
		} else {
			lines = append(lines, NormalRowStyle.Render(line))
		}
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func (m *GalleryModel) renderPreview(spinner string) string {
	url, ok := m.SelectedURL()
	if !ok {
		return HelpDescStyle.Render("No image selected")
	}
	if art, ok := m.previews[url]; ok {
		return art
	}
	if msg, ok := m.previewErrs[url]; ok {
		return ErrorStyle.Render("Preview failed: " + msg)
	}
	return NormalRowStyle.Render(spinner + " Rendering preview…")
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}

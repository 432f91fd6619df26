package ui

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"

	"woof/internal/breedlist"
	"woof/internal/db"
	"woof/internal/gallery"
	"woof/internal/logfields"
	"woof/internal/model"
	"woof/internal/preview"
)

// DefaultGalleryCacheSize is how many gallery view models are kept alive.
const DefaultGalleryCacheSize = 16

// Deps bundles the collaborators of the root model.
type Deps struct {
	// DB stores view history. Nil disables it.
	DB     *sql.DB
	Breeds *breedlist.ViewModel
	// NewGallery builds the view model for one breed's gallery.
	NewGallery func(breedKey string) *gallery.ViewModel
	// Preview loads images for the ASCII preview. Nil disables it.
	Preview          *preview.Loader
	TermCaps         TerminalCapabilities
	GalleryCacheSize int
	Logger           *slog.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	db         *sql.DB
	breedsVM   *breedlist.ViewModel
	newGallery func(string) *gallery.ViewModel
	galleries  *lru.Cache[string, *gallery.ViewModel]
	loader     *preview.Loader
	termCaps   TerminalCapabilities
	logger     *slog.Logger

	screen model.Screen
	gState GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	columnJump  bool

	breedsCh     <-chan breedlist.ViewState
	breedsCancel func()
	breedState   breedlist.ViewState
	breeds       *BreedsModel
	views        map[string]model.BreedView

	galleryCh     <-chan gallery.ViewState
	galleryCancel func()
	gallery       *GalleryModel

	spinner spinner.Model
	keys    KeyMap
	prefs   UIPreferences
}

type breedStateMsg struct {
	state breedlist.ViewState
	ch    <-chan breedlist.ViewState
}

type galleryStateMsg struct {
	breedKey string
	state    gallery.ViewState
	ch       <-chan gallery.ViewState
}

type streamClosedMsg struct{}

// New creates the root model and subscribes to the breed list, which starts
// loading it.
func New(deps Deps) (Model, error) {
	size := deps.GalleryCacheSize
	if size <= 0 {
		size = DefaultGalleryCacheSize
	}
	galleries, err := lru.NewWithEvict(size, func(_ string, vm *gallery.ViewModel) {
		go vm.Close()
	})
	if err != nil {
		return Model{}, fmt.Errorf("failed to create gallery cache: %w", err)
	}

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m := Model{
		db:         deps.DB,
		breedsVM:   deps.Breeds,
		newGallery: deps.NewGallery,
		galleries:  galleries,
		loader:     deps.Preview,
		termCaps:   deps.TermCaps,
		logger:     logger,
		screen:     model.ScreenBreeds,
		gState:     GStateIdle,
		breedState: breedlist.Loading{},
		views:      make(map[string]model.BreedView),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(ColorAccent))),
		keys:       DefaultKeyMap(),
		prefs:      loadUIPreferences(),
	}
	m.breedsCh, m.breedsCancel = m.breedsVM.Observe()
	return m, nil
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitForBreedState(m.breedsCh),
		loadViewsCmd(m.db),
		m.spinner.Tick,
	)
}

// Shutdown unsubscribes from every stream and closes cached galleries.
func (m Model) Shutdown() {
	if m.galleryCancel != nil {
		m.galleryCancel()
	}
	if m.breedsCancel != nil {
		m.breedsCancel()
	}
	for _, k := range m.galleries.Keys() {
		if vm, ok := m.galleries.Peek(k); ok {
			vm.Close()
		}
	}
	m.galleries.Purge()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.columnJump {
			if msg.String() == "esc" {
				m.columnJump = false
				m.info = ""
				return m, nil
			}
			if n, err := strconv.Atoi(msg.String()); err == nil {
				table := m.currentTable()
				if table != nil && table.JumpToColumn(n) {
					m.columnJump = false
					m.info = fmt.Sprintf("Jumped to column %d", n)
					m.persistCurrentTablePrefs()
					return m, nil
				}
				m.info = fmt.Sprintf("Column %d unavailable", n)
				return m, nil
			}
		}

		// Handle ctrl+c globally
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.error = ""

		if key.Matches(msg, m.keys.Help) {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		return m.handleNavMode(msg)

	case breedStateMsg:
		if msg.ch != m.breedsCh {
			return m, nil
		}
		m.applyBreedState(msg.state)
		return m, waitForBreedState(m.breedsCh)

	case galleryStateMsg:
		if m.gallery == nil || msg.ch != m.galleryCh {
			return m, nil
		}
		m.gallery.SetState(msg.state)
		return m, tea.Batch(waitForGalleryState(msg.breedKey, msg.ch), m.previewCmd())

	case streamClosedMsg:
		return m, nil

	case model.ViewsLoadedMsg:
		m.views = msg.Views
		if m.breeds != nil {
			m.breeds.SetViews(m.views)
		}
		return m, nil

	case model.ViewDeletedMsg:
		delete(m.views, msg.BreedKey)
		if m.breeds != nil {
			m.breeds.SetViews(m.views)
		}
		m.info = "View history cleared"
		return m, nil

	case model.ViewRecordedMsg:
		m.views[msg.View.BreedKey] = msg.View
		if m.breeds != nil {
			m.breeds.SetViews(m.views)
		}
		if m.gallery != nil && m.gallery.BreedKey() == msg.View.BreedKey {
			m.gallery.SetView(msg.View)
		}
		return m, nil

	case model.PreviewLoadedMsg:
		if m.gallery != nil {
			m.gallery.SetPreview(msg.URL, msg.Art)
		}
		return m, nil

	case model.PreviewFailedMsg:
		if m.gallery != nil {
			m.gallery.SetPreviewError(msg.URL, msg.Err)
		}
		m.logger.Warn("preview failed", logfields.URL(msg.URL), logfields.Error(msg.Err))
		return m, nil

	case model.ErrorMsg:
		m.error = msg.Err.Error()
		return m, nil
	}

	return m, nil
}

func (m *Model) applyBreedState(s breedlist.ViewState) {
	m.breedState = s
	switch s := s.(type) {
	case breedlist.Success:
		if m.breeds == nil {
			m.breeds = NewBreedsModel(s.Breeds, m.views)
			m.breeds.ApplyPrefs(m.prefs.Breeds)
			if m.prefs.LastBreed != "" {
				m.breeds.SelectKey(m.prefs.LastBreed)
			}
		} else {
			m.breeds.SetBreeds(s.Breeds, m.views)
		}
		m.breeds.SetRefreshing(s.IsRefreshing)
		if !s.IsRefreshing {
			m.info = ""
		}
	case breedlist.Error:
		m.info = ""
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	var breadcrumbParts []string

	// Header: 2 lines, Footer: 2 lines
	contentHeight := m.height - 4

	var banners []string
	if m.error != "" {
		banners = append(banners, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		banners = append(banners, SuccessStyle.Width(m.width).Render(m.info))
	}
	contentHeight -= len(banners)

	switch m.screen {
	case model.ScreenBreeds:
		breadcrumbParts = []string{"Breeds"}
		content = m.renderBreeds(contentHeight)
	case model.ScreenGallery:
		breadcrumbParts = []string{"Breeds", "Gallery"}
		if m.gallery != nil {
			breadcrumbParts = []string{"Breeds", m.gallery.breed.DisplayName}
			content = m.gallery.View(m.width, contentHeight, m.spinner.View())
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.width)

	// Ensure content fills the available height to anchor footer at bottom
	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		MaxHeight(contentHeight).
		Render(content)

	parts := append([]string{header}, banners...)
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderBreeds(height int) string {
	switch s := m.breedState.(type) {
	case breedlist.Loading:
		return EmptyStateStyle.Width(m.width).Render(m.spinner.View() + " Fetching breeds and thumbnails…")
	case breedlist.Error:
		msg := ErrorStyle.Render("Could not load breeds: " + s.Message)
		hint := HelpDescStyle.Render("Press 'r' to try again.")
		return PanelStyle.Width(m.width - 4).Render(msg + "\n\n" + hint)
	}
	if m.breeds == nil {
		return ""
	}
	return m.breeds.View(m.width, height)
}

func renderHeader(breadcrumbParts []string, width int) string {
	// Left side: app name + breadcrumb
	title := HeaderStyle.Render("woof")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render("dog.ceo") + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// handleNavMode handles navigation input.
func (m Model) handleNavMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if t := m.currentTable(); t != nil {
		switch {
		case key.Matches(msg, m.keys.NextColumn):
			t.NextColumn()
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.PrevColumn):
			t.PrevColumn()
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.ColumnJump):
			m.columnJump = true
			m.info = "Jump to column: press 1-9 (esc to cancel)"
			return m, nil
		case key.Matches(msg, m.keys.SortAsc):
			t.SortActiveColumn(false)
			m.info = "Sorted ascending"
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.SortDesc):
			t.SortActiveColumn(true)
			m.info = "Sorted descending"
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.HideColumn):
			if t.HideActiveColumn() {
				m.info = "Column hidden"
				m.persistCurrentTablePrefs()
			} else {
				m.info = "Cannot hide last visible column"
			}
			return m, nil
		case key.Matches(msg, m.keys.ShowColumns):
			t.ShowAllColumns()
			m.info = "All columns shown"
			m.persistCurrentTablePrefs()
			return m, nil
		case key.Matches(msg, m.keys.FilterValue):
			if t.FilterBySelectedValue() {
				m.info = "Filter applied from selected value"
			} else {
				m.info = "No filterable value in selected cell"
			}
			return m, nil
		case key.Matches(msg, m.keys.ClearFilter):
			if t.ClearFilter() {
				m.info = "Filter cleared"
			}
			return m, nil
		}
	}

	// Handle "gg" state machine
	if key.Matches(msg, m.keys.Top) {
		if m.gState == GStateIdle {
			m.gState = GStateFirstG
			return m, nil
		}
		m.gState = GStateIdle
		return m.handleJumpToTop()
	}
	m.gState = GStateIdle

	switch m.screen {
	case model.ScreenBreeds:
		return m.handleBreedsNav(msg)
	case model.ScreenGallery:
		return m.handleGalleryNav(msg)
	}
	return m, nil
}

func (m *Model) currentTable() tableController {
	if m.screen == model.ScreenBreeds && m.breeds != nil {
		if _, ok := m.breedState.(breedlist.Success); ok {
			return m.breeds
		}
	}
	return nil
}

func (m *Model) persistCurrentTablePrefs() {
	if m.screen == model.ScreenBreeds && m.breeds != nil {
		m.prefs.Breeds = m.breeds.Prefs()
	}
	m.savePrefs()
}

func (m *Model) savePrefs() {
	if err := saveUIPreferences(m.prefs); err != nil {
		m.logger.Warn("failed to save ui preferences", logfields.Error(err))
	}
}

func (m Model) handleJumpToTop() (tea.Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenBreeds:
		if m.breeds != nil {
			m.breeds.JumpToTop()
		}
	case model.ScreenGallery:
		if m.gallery != nil {
			m.gallery.JumpToTop()
			return m, m.previewCmd()
		}
	}
	return m, nil
}

func (m Model) handleBreedsNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		m.breedsVM.Dispatch(breedlist.RefreshBreeds{})
		m.info = "Refreshing breeds…"
		return m, nil
	}

	if m.breeds == nil || m.currentTable() == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Open):
		if row, ok := m.breeds.Selected(); ok {
			return m.openGallery(row.Breed)
		}
	case key.Matches(msg, m.keys.ClearHistory):
		if row, ok := m.breeds.Selected(); ok && row.ViewCount > 0 {
			return m, deleteViewCmd(m.db, row.Key)
		}
	case key.Matches(msg, m.keys.Down):
		m.breeds.MoveDown()
	case key.Matches(msg, m.keys.Up):
		m.breeds.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		m.breeds.JumpToBottom()
	case key.Matches(msg, m.keys.HalfPageDown):
		m.breeds.HalfPageDown(m.height / 2)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.breeds.HalfPageUp(m.height / 2)
	}
	return m, nil
}

func (m Model) handleGalleryNav(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.gallery == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Back):
		return m.closeGallery()
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		if vm, ok := m.galleries.Peek(m.gallery.BreedKey()); ok {
			vm.Dispatch(gallery.RefreshGallery{BreedKey: m.gallery.BreedKey()})
		}
		return m, nil
	case key.Matches(msg, m.keys.Preview):
		m.prefs.ShowPreview = m.gallery.TogglePreview()
		m.savePrefs()
		return m, m.previewCmd()
	case key.Matches(msg, m.keys.Down):
		m.gallery.MoveDown()
		return m, m.previewCmd()
	case key.Matches(msg, m.keys.Up):
		m.gallery.MoveUp()
		return m, m.previewCmd()
	case key.Matches(msg, m.keys.Bottom):
		m.gallery.JumpToBottom()
		return m, m.previewCmd()
	}
	return m, nil
}

// openGallery subscribes to the gallery of breed, reusing a cached view
// model so that returning within the grace period shows retained state.
func (m Model) openGallery(breed model.Breed) (tea.Model, tea.Cmd) {
	vm, ok := m.galleries.Get(breed.Key)
	if !ok {
		vm = m.newGallery(breed.Key)
		m.galleries.Add(breed.Key, vm)
	}
	retained := ok && vm.Active()

	m.galleryCh, m.galleryCancel = vm.Observe()
	m.gallery = NewGalleryModel(breed, m.prefs.ShowPreview)
	m.gallery.SetView(m.views[breed.Key])
	m.screen = model.ScreenGallery
	m.info = ""

	m.prefs.LastBreed = breed.Key
	m.savePrefs()

	m.logger.Debug("gallery opened", logfields.Breed(breed.Key), slog.Bool("retained", retained))
	return m, tea.Batch(
		waitForGalleryState(breed.Key, m.galleryCh),
		recordViewCmd(m.db, breed.Key),
	)
}

func (m Model) closeGallery() (tea.Model, tea.Cmd) {
	if m.galleryCancel != nil {
		m.galleryCancel()
	}
	m.galleryCh = nil
	m.galleryCancel = nil
	m.gallery = nil
	m.screen = model.ScreenBreeds
	return m, nil
}

func (m Model) previewCmd() tea.Cmd {
	if m.gallery == nil || m.loader == nil {
		return nil
	}
	url, ok := m.gallery.PreviewWanted()
	if !ok {
		return nil
	}
	m.gallery.MarkPreviewPending(url)

	w, h := m.gallery.PreviewSize(m.width, m.height-4)
	loader, caps := m.loader, m.termCaps
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		img, err := loader.Load(ctx, url)
		if err != nil {
			return model.PreviewFailedMsg{URL: url, Err: err}
		}
		return model.PreviewLoadedMsg{URL: url, Art: RenderPreview(img, caps, w, h), Width: w}
	}
}

func waitForBreedState(ch <-chan breedlist.ViewState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return breedStateMsg{state: s, ch: ch}
	}
}

func waitForGalleryState(breedKey string, ch <-chan gallery.ViewState) tea.Cmd {
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return galleryStateMsg{breedKey: breedKey, state: s, ch: ch}
	}
}

func loadViewsCmd(database *sql.DB) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		views, err := db.ListViews(ctx, database)
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewsLoadedMsg{Views: views}
	}
}

func deleteViewCmd(database *sql.DB, breedKey string) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.DeleteView(ctx, database, breedKey); err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewDeletedMsg{BreedKey: breedKey}
	}
}

func recordViewCmd(database *sql.DB, breedKey string) tea.Cmd {
	if database == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		v, err := db.RecordView(ctx, database, breedKey, time.Now())
		if err != nil {
			return model.ErrorMsg{Err: err}
		}
		return model.ViewRecordedMsg{View: v}
	}
}

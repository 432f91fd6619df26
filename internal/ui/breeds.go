package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"woof/internal/model"
	"woof/internal/util"
)

type breedColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// BreedsModel represents the breed table.
type BreedsModel struct {
	allRows []model.BreedRow
	rows    []model.BreedRow
	cursor  int
	offset  int

	viewportHeight int
	refreshing     bool

	columns      []breedColumn
	activeColumn int
	sortKey      string
	sortDesc     bool
	filterKey    string
	filterValue  string
}

// NewBreedsModel creates a breed table from the loaded breeds joined with
// their view history.
func NewBreedsModel(breeds []model.Breed, views map[string]model.BreedView) *BreedsModel {
	m := &BreedsModel{
		columns: []breedColumn{
			{key: "name", label: "name", width: 24},
			{key: "parent", label: "parent", width: 14},
			{key: "kind", label: "kind", width: 9},
			{key: "views", label: "views", width: 7},
			{key: "last", label: "last viewed", width: 14},
			{key: "thumbnail", label: "thumbnail", width: 36},
		},
	}
	m.SetBreeds(breeds, views)
	return m
}

// SetBreeds replaces the rows, keeping the cursor on the same breed when it
// is still present.
func (m *BreedsModel) SetBreeds(breeds []model.Breed, views map[string]model.BreedView) {
	selected := m.SelectedKey()
	rows := make([]model.BreedRow, 0, len(breeds))
	for _, b := range breeds {
		row := model.BreedRow{Breed: b}
		if v, ok := views[b.Key]; ok && v.ViewCount > 0 {
			row.ViewCount = v.ViewCount
			last := v.LastViewedAt
			row.LastViewed = &last
		}
		rows = append(rows, row)
	}
	m.allRows = rows
	m.rebuild()
	if selected != "" {
		m.SelectKey(selected)
	}
}

// SetViews refreshes the view history columns.
func (m *BreedsModel) SetViews(views map[string]model.BreedView) {
	breeds := make([]model.Breed, 0, len(m.allRows))
	for _, r := range m.allRows {
		breeds = append(breeds, r.Breed)
	}
	m.SetBreeds(breeds, views)
}

// SetRefreshing toggles the refresh indicator in the status bar.
func (m *BreedsModel) SetRefreshing(refreshing bool) {
	m.refreshing = refreshing
}

// Selected returns the breed under the cursor.
func (m *BreedsModel) Selected() (model.BreedRow, bool) {
	if len(m.rows) == 0 || m.cursor >= len(m.rows) {
		return model.BreedRow{}, false
	}
	return m.rows[m.cursor], true
}

// SelectedKey returns the key of the breed under the cursor, or "".
func (m *BreedsModel) SelectedKey() string {
	row, ok := m.Selected()
	if !ok {
		return ""
	}
	return row.Key
}

// SelectKey moves the cursor to key. It reports whether key is visible.
func (m *BreedsModel) SelectKey(key string) bool {
	for i, r := range m.rows {
		if r.Key == key {
			m.cursor = i
			vh := m.viewportHeightOrDefault()
			if m.cursor < m.offset || m.cursor >= m.offset+vh {
				m.offset = max(0, m.cursor-vh/2)
			}
			return true
		}
	}
	return false
}

func (m *BreedsModel) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
	m.rebuild()
}

func (m *BreedsModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		SortKey:       m.sortKey,
		SortDesc:      m.sortDesc,
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

func (m *BreedsModel) rebuild() {
	rows := append([]model.BreedRow(nil), m.allRows...)

	if m.filterKey != "" && m.filterValue != "" {
		filtered := make([]model.BreedRow, 0, len(rows))
		target := strings.ToLower(strings.TrimSpace(m.filterValue))
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(m.getValue(r, m.filterKey)), target) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			left := strings.ToLower(m.getValue(rows[i], m.sortKey))
			right := strings.ToLower(m.getValue(rows[j], m.sortKey))
			if left == right {
				return rows[i].Key < rows[j].Key
			}
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}

	m.rows = rows
	m.clampCursor()
}

func (m *BreedsModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
}

func (m *BreedsModel) getValue(row model.BreedRow, key string) string {
	switch key {
	case "name":
		return row.DisplayName
	case "parent":
		return row.Parent()
	case "kind":
		if row.IsSubBreed() {
			return "sub-breed"
		}
		return "breed"
	case "views":
		return fmt.Sprintf("%06d", row.ViewCount)
	case "last":
		if row.LastViewed == nil {
			return ""
		}
		return row.LastViewed.UTC().Format("2006-01-02T15:04:05")
	case "thumbnail":
		return row.ThumbnailURL
	default:
		return ""
	}
}

func (m *BreedsModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *BreedsModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

func (m *BreedsModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *BreedsModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *BreedsModel) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	idx := number - 1
	if m.columns[idx].hidden {
		return false
	}
	m.activeColumn = idx
	return true
}

func (m *BreedsModel) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

func (m *BreedsModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *BreedsModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

func (m *BreedsModel) FilterBySelectedValue() bool {
	if len(m.rows) == 0 {
		return false
	}
	key := m.columns[m.activeColumn].key
	value := strings.TrimSpace(m.getValue(m.rows[m.cursor], key))
	if value == "" {
		return false
	}
	m.filterKey = key
	m.filterValue = value
	m.rebuild()
	return true
}

func (m *BreedsModel) ClearFilter() bool {
	if m.filterKey == "" {
		return false
	}
	m.filterKey = ""
	m.filterValue = ""
	m.rebuild()
	return true
}

func (m *BreedsModel) TableMeta() string {
	col := strings.ToUpper(m.columns[m.activeColumn].label)
	parts := []string{fmt.Sprintf("col %s", col)}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filter %s=%q", strings.ToUpper(m.filterKey), m.filterValue))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *BreedsModel) cell(row model.BreedRow, col breedColumn) string {
	switch col.key {
	case "name":
		return util.TruncateString(row.DisplayName, col.width)
	case "parent":
		return util.TruncateString(row.Parent(), col.width)
	case "kind":
		return m.getValue(row, "kind")
	case "views":
		return util.FormatViewCount(row.ViewCount)
	case "last":
		return util.FormatLastViewed(row.LastViewed)
	case "thumbnail":
		return util.TruncateString(row.ThumbnailURL, col.width)
	default:
		return ""
	}
}

// View renders the breed table.
func (m *BreedsModel) View(width, height int) string {
	if len(m.allRows) == 0 {
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render("No breeds returned by the API.\nPress  r  to refresh.")
	}

	visible := m.visibleColumnIndexes()
	if len(visible) == 0 {
		return EmptyStateStyle.Width(width).Height(height).Render("No visible columns. Press C to show all columns.")
	}

	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := formatHeaderLabel(col.label)
		if idx == m.activeColumn {
			label = renderActiveHeaderLabel(label)
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width+2, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}
	sepTotal := (len(widths) - 1) * tableSeparatorWidth()
	if extra := width - totalFixed - sepTotal - 2; extra > 0 {
		widths[len(widths)-1] += extra
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)
	divider := renderTableDivider(widths)

	visibleHeight := max(1, height-3)
	m.viewportHeight = visibleHeight

	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			cells = append(cells, m.cell(row, m.columns[idx]))
		}
		rows = append(rows, renderTableRow(cells, widths, style))
	}

	subBreeds := 0
	for _, r := range m.allRows {
		if r.IsSubBreed() {
			subBreeds++
		}
	}
	parts := []string{fmt.Sprintf("%d breeds (%d sub-breeds)", len(m.allRows), subBreeds)}
	if len(m.rows) > 0 {
		parts = append(parts, fmt.Sprintf("row %d/%d", m.cursor+1, len(m.rows)))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filtered: %d/%d", len(m.rows), len(m.allRows)))
	}
	if meta := m.TableMeta(); meta != "" {
		parts = append(parts, meta)
	}
	status := StatusBarStyle.Render(strings.Join(parts, "  ·  "))
	if m.refreshing {
		status += RefreshingStyle.Render("  ⟳ refreshing…")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		divider,
		strings.Join(rows, "\n"),
	)
	spacerHeight := max(0, height-lipgloss.Height(content)-lipgloss.Height(status))
	spacer := lipgloss.NewStyle().Height(spacerHeight).Render("")

	return lipgloss.JoinVertical(lipgloss.Left, content, spacer, status)
}

func (m *BreedsModel) viewportHeightOrDefault() int {
	if m.viewportHeight == 0 {
		return 10
	}
	return m.viewportHeight
}

// MoveDown moves the cursor down.
func (m *BreedsModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		if m.cursor >= m.offset+m.viewportHeightOrDefault() {
			m.offset++
		}
	}
}

// MoveUp moves the cursor up.
func (m *BreedsModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		if m.cursor < m.offset {
			m.offset--
		}
	}
}

// JumpToTop jumps to the first item.
func (m *BreedsModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *BreedsModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		vh := m.viewportHeightOrDefault()
		if m.cursor >= vh {
			m.offset = m.cursor - vh + 1
		}
	}
}

// HalfPageDown moves down half a page.
func (m *BreedsModel) HalfPageDown(pageSize int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor = min(m.cursor+pageSize/2, len(m.rows)-1)
	vh := m.viewportHeightOrDefault()
	if m.cursor >= m.offset+vh {
		m.offset = m.cursor - vh + 1
	}
}

// HalfPageUp moves up half a page.
func (m *BreedsModel) HalfPageUp(pageSize int) {
	m.cursor = max(m.cursor-pageSize/2, 0)
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
}

package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"woof/internal/model"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, width int) string {
	switch screen {
	case model.ScreenBreeds:
		return renderBreedsHelp(width)
	case model.ScreenGallery:
		return renderGalleryHelp(width)
	default:
		return renderDefaultHelp(width)
	}
}

func renderBreedsHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "gallery"),
		helpKey("r", "refresh"),
		helpKey("x", "clear history"),
		helpKey("tab", "next col"),
		helpKey("s/S", "sort"),
		helpKey("c/C", "hide/show col"),
		helpKey("n/N", "filter"),
		helpKey("?", "help"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func renderGalleryHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("p", "preview"),
		helpKey("r", "new images"),
		helpKey("esc/h/b", "back"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Navigation"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"ctrl+d", "Half page down"},
			{"ctrl+u", "Half page up"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Breeds Screen"),
		helpSection([]helpItem{
			{"enter / l", "Open breed gallery"},
			{"r", "Refresh breed list (keeps current rows visible)"},
			{"x", "Clear view history of the selected breed"},
			{"tab / shift+tab", "Cycle active column"},
			{"/ then 1-9", "Jump to column"},
			{"s / S", "Sort active column asc/desc"},
			{"c / C", "Hide active column / show all"},
			{"n / N", "Filter by selected value / clear"},
		}),
		titleSection("Gallery Screen"),
		helpSection([]helpItem{
			{"r", "Fetch a new set of random images"},
			{"p", "Toggle ASCII preview of the selected image"},
			{"esc / h / b", "Back to breeds"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}

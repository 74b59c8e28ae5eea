package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/handiism/cat-gallery/internal/model"
)

// halfBlock draws two vertically stacked pixels per terminal cell: the
// foreground paints the top half, the background the bottom.
const halfBlock = "▀"

// cellSize is the on-screen footprint of one gallery entry, border excluded.
type cellSize struct {
	Width  int // columns
	Height int // image rows, caption excluded
}

func newCellSize(thumbWidth, thumbHeight int) cellSize {
	return cellSize{
		Width:  max(thumbWidth, 8),
		Height: max((thumbHeight+1)/2, 2),
	}
}

func hexColor(c color.Color) lipgloss.Color {
	r, g, b, _ := c.RGBA()
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
}

// renderImage converts img to half-block rows, centered in size.
func renderImage(img image.Image, size cellSize) string {
	bounds := img.Bounds()
	w := min(bounds.Dx(), size.Width)
	rows := min((bounds.Dy()+1)/2, size.Height)

	lines := make([]string, 0, rows)
	for row := 0; row < rows; row++ {
		var line strings.Builder
		y := bounds.Min.Y + row*2
		for x := bounds.Min.X; x < bounds.Min.X+w; x++ {
			style := lipgloss.NewStyle().Foreground(hexColor(img.At(x, y)))
			if y+1 < bounds.Max.Y {
				style = style.Background(hexColor(img.At(x, y+1)))
			}
			line.WriteString(style.Render(halfBlock))
		}
		lines = append(lines, line.String())
	}

	return lipgloss.Place(size.Width, size.Height, lipgloss.Center, lipgloss.Center, strings.Join(lines, "\n"))
}

// renderCell renders one entry with its caption.
func renderCell(entry *model.ImageEntry, size cellSize, selected bool) string {
	var body string
	switch entry.Status {
	case model.StatusLoaded:
		if entry.Thumbnail != nil {
			body = renderImage(entry.Thumbnail, size)
			break
		}
		fallthrough
	case model.StatusFallback:
		body = lipgloss.Place(size.Width, size.Height, lipgloss.Center, lipgloss.Center,
			fallbackStyle.Render("=^.^="))
	default:
		body = lipgloss.Place(size.Width, size.Height, lipgloss.Center, lipgloss.Center,
			dimStyle.Render("..."))
	}

	caption := truncate(entry.Alt, size.Width)
	switch entry.Status {
	case model.StatusFallback:
		caption = warningStyle.Render(caption)
	case model.StatusPlaceholder:
		caption = dimStyle.Render(caption)
	default:
		caption = infoStyle.Render(caption)
	}
	caption = lipgloss.PlaceHorizontal(size.Width, lipgloss.Center, caption)

	style := cellStyle
	if selected {
		style = selectedCellStyle
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, body, caption))
}

// renderGrid lays entries out in rows of columns cells.
func renderGrid(entries []*model.ImageEntry, size cellSize, columns, selected int) string {
	if len(entries) == 0 {
		return dimStyle.Render("No cats yet.")
	}
	columns = max(columns, 1)

	var rows []string
	for start := 0; start < len(entries); start += columns {
		end := min(start+columns, len(entries))
		cells := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			cells = append(cells, renderCell(entries[i], size, i == selected))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return strings.Join(rows, "\n")
}

// columnsFor returns how many cells fit in width.
func columnsFor(width int, size cellSize) int {
	outer := size.Width + cellStyle.GetHorizontalFrameSize()
	return max(width/outer, 1)
}

// rowHeight is the height in lines of one grid row.
func rowHeight(size cellSize) int {
	return size.Height + 1 + cellStyle.GetVerticalFrameSize()
}

// truncate cuts s to at most width display cells.
func truncate(s string, width int) string {
	if width <= 1 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, "…")
}

package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/asynkron/vibecheck/internal/core/aura"
)

// CardBinding is what the result card displays, field for field. Values are
// carried over verbatim; only rendering may reinterpret them.
type CardBinding struct {
	PrimaryColor   string
	SecondaryColor string
	AccentColor    string
	AuraName       string
	Description    string
	Emoji          string
	PlaylistName   string
}

// BindCard maps a result onto the card.
func BindCard(r aura.Result) CardBinding {
	return CardBinding{
		PrimaryColor:   r.PrimaryColor,
		SecondaryColor: r.SecondaryColor,
		AccentColor:    r.AccentColor,
		AuraName:       r.AuraName,
		Description:    r.Description,
		Emoji:          r.Emoji,
		PlaylistName:   r.PlaylistName,
	}
}

// Palette returns the three colors in display order.
func (c CardBinding) Palette() []string {
	return []string{c.PrimaryColor, c.SecondaryColor, c.AccentColor}
}

const swatchWidth = 6

// fallbackColor stands in for a hex value the terminal cannot parse.
var fallbackColor = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

func parseColor(hex string) colorful.Color {
	c, err := colorful.Hex(strings.TrimSpace(hex))
	if err != nil {
		return fallbackColor
	}
	return c
}

// renderCard draws the reading. width is the outer width available. The
// description is printed as-is below the box and is never wrapped or parsed,
// so every literal value stays in one piece.
func renderCard(card CardBinding, width int) string {
	inner := width - 4
	if inner < 20 {
		inner = 20
	}

	accent := lipgloss.Color(parseColor(card.AccentColor).Hex())
	primary := lipgloss.Color(parseColor(card.PrimaryColor).Hex())

	title := lipgloss.NewStyle().Bold(true).Foreground(primary).
		Render(strings.TrimSpace(card.Emoji + "  " + card.AuraName))

	swatches := make([]string, 0, 3)
	for _, hex := range card.Palette() {
		block := lipgloss.NewStyle().Background(lipgloss.Color(parseColor(hex).Hex())).
			Render(strings.Repeat(" ", swatchWidth))
		label := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(" " + hex)
		swatches = append(swatches, block+label+"   ")
	}
	swatchRow := lipgloss.JoinHorizontal(lipgloss.Top, swatches...)

	playlist := lipgloss.NewStyle().Italic(true).Foreground(accent).Render("♫ " + card.PlaylistName)

	// Grow the box rather than wrap a long name or playlist.
	boxWidth := inner
	for _, row := range []string{title, swatchRow, playlist} {
		if w := lipgloss.Width(row) + 2; w > boxWidth {
			boxWidth = w
		}
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		PaddingLeft(1).
		PaddingRight(1).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			swatchRow,
			paletteBar(card.Palette(), inner),
			"",
			playlist,
		))

	description := lipgloss.NewStyle().Italic(true).TabWidth(lipgloss.NoTabConversion).Render(card.Description)
	return box + "\n\n" + description
}

// paletteBar blends through the palette in Lab space across width cells.
func paletteBar(palette []string, width int) string {
	if width < 1 {
		width = 1
	}
	stops := make([]colorful.Color, 0, len(palette))
	for _, hex := range palette {
		stops = append(stops, parseColor(hex))
	}
	if len(stops) == 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(width * 20)
	for i := 0; i < width; i++ {
		c := stops[0]
		if len(stops) > 1 && width > 1 {
			pos := float64(i) / float64(width-1) * float64(len(stops)-1)
			seg := int(math.Min(math.Floor(pos), float64(len(stops)-2)))
			c = stops[seg].BlendLab(stops[seg+1], pos-float64(seg)).Clamped()
		}
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("▀"))
	}
	return b.String()
}

// pulseBar is the animated bar shown while a reading is in flight.
func pulseBar(width, frame int) string {
	if width < 1 {
		width = 1
	}
	var b strings.Builder
	b.Grow(width * 20)
	baseHue := float64((frame * 5) % 360)
	for i := 0; i < width; i++ {
		hue := math.Mod(baseHue+float64(i*3), 360.0)
		phase := (float64(i)/float64(width))*2*math.Pi + float64(frame)/8.0
		light := 0.50 + 0.15*math.Sin(phase)
		c := colorful.Hsl(hue, 0.85, light).Clamped()
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render("█"))
	}
	return b.String()
}

// Package aura defines the structured reading returned by the generation
// service and the contract used to request and validate it.
package aura

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// Result captures one vibe reading. Values are treated as immutable once
// Decode returns them.
type Result struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	AccentColor    string `json:"accentColor"`
	AuraName       string `json:"auraName"`
	Description    string `json:"description"`
	Emoji          string `json:"emoji"`
	PlaylistName   string `json:"playlistName"`
}

var hexColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// Palette returns the three colors in display order.
func (r Result) Palette() []string {
	return []string{r.PrimaryColor, r.SecondaryColor, r.AccentColor}
}

// Normalize trims whitespace, prefixes bare hex digits with '#', and keeps
// only the first grapheme cluster of the emoji. Validate then rejects a
// cluster that is not an emoji, such as the "c" left over from "calm".
func (r Result) Normalize() Result {
	r.PrimaryColor = normalizeHex(r.PrimaryColor)
	r.SecondaryColor = normalizeHex(r.SecondaryColor)
	r.AccentColor = normalizeHex(r.AccentColor)
	r.AuraName = strings.TrimSpace(r.AuraName)
	r.Description = strings.TrimSpace(r.Description)
	r.Emoji = firstGrapheme(strings.TrimSpace(r.Emoji))
	r.PlaylistName = strings.TrimSpace(r.PlaylistName)
	return r
}

// Validate reports every field that breaks the result invariants.
func (r Result) Validate() []string {
	var issues []string
	for _, field := range Fields {
		value := r.field(field.Name)
		if strings.TrimSpace(value) == "" {
			issues = append(issues, fmt.Sprintf("%s: must not be empty", field.Name))
			continue
		}
		if field.HexColor && !hexColorPattern.MatchString(value) {
			issues = append(issues, fmt.Sprintf("%s: %q is not a hex color", field.Name, value))
		}
	}
	if r.Emoji != "" && !isEmoji(firstGrapheme(r.Emoji)) {
		issues = append(issues, fmt.Sprintf("emoji: %q is not an emoji", r.Emoji))
	}
	return issues
}

// isEmoji reports whether a grapheme cluster reads as a pictograph: its
// lead rune sits in an emoji block, or it carries an emoji presentation
// selector or keycap.
func isEmoji(cluster string) bool {
	if strings.ContainsAny(cluster, "\uFE0F\u20E3") {
		return true
	}
	r, _ := utf8.DecodeRuneInString(cluster)
	switch {
	case r >= 0x1F000 && r <= 0x1FAFF: // mahjong through symbols & pictographs ext-A, flags
		return true
	case r >= 0x2600 && r <= 0x27BF: // misc symbols, dingbats
		return true
	case r >= 0x2300 && r <= 0x23FF, r >= 0x2B00 && r <= 0x2BFF:
		return true
	case r >= 0x2190 && r <= 0x21FF, r >= 0x2900 && r <= 0x297F:
		return true
	}
	switch r {
	case 0x00A9, 0x00AE, 0x203C, 0x2049, 0x2122, 0x2139, 0x24C2, 0x25AA, 0x25AB, 0x25B6, 0x25C0,
		0x25FB, 0x25FC, 0x25FD, 0x25FE, 0x3030, 0x303D, 0x3297, 0x3299:
		return true
	}
	return false
}

func (r Result) field(name string) string {
	switch name {
	case "primaryColor":
		return r.PrimaryColor
	case "secondaryColor":
		return r.SecondaryColor
	case "accentColor":
		return r.AccentColor
	case "auraName":
		return r.AuraName
	case "description":
		return r.Description
	case "emoji":
		return r.Emoji
	case "playlistName":
		return r.PlaylistName
	default:
		return ""
	}
}

func normalizeHex(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.HasPrefix(value, "#") {
		return value
	}
	if hexColorPattern.MatchString("#" + value) {
		return "#" + value
	}
	return value
}

func firstGrapheme(value string) string {
	if value == "" {
		return value
	}
	gr := uniseg.NewGraphemes(value)
	if gr.Next() {
		return gr.Str()
	}
	return value
}

package tui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The dashboard must stay readable on light and dark terminal backgrounds.
// Faint styling is only applied on dark backgrounds.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted       = ac("240", "243")
	colorSelectedBg  = ac("#e9e9e9", "#262626")
	colorSelectedFg  = ac("235", "255")
	colorSurfaceBg   = ac("255", "235")
	colorSurfaceFg   = ac("235", "252")
	colorControlBg   = ac("252", "235")
	colorInputBg     = ac("254", "234")
	colorAccent      = ac("27", "62")
	colorAccentFg    = ac("255", "235")
	colorDone        = ac("28", "78")
	colorError       = ac("160", "203")
	colorBorder      = ac("250", "240")
	colorBorderFocus = ac("232", "255")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

var (
	styleHeader = lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
	styleTabOn  = lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(colorAccentFg).Background(colorAccent)
	styleTabOff = lipgloss.NewStyle().Padding(0, 1).Foreground(colorSurfaceFg).Background(colorControlBg)
	styleError  = lipgloss.NewStyle().Foreground(colorError)
	styleDone   = lipgloss.NewStyle().Foreground(colorDone)
	styleUser   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleAgent  = lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
)

func panelStyle(focused bool) lipgloss.Style {
	border := colorBorder
	if focused {
		border = colorBorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
}

// applyColorProfilePreference sets Lip Gloss's color profile for the TUI.
//
// termenv.EnvColorProfile honors CLICOLOR/CLICOLOR_FORCE, which can disable
// colors in a TUI. Only NO_COLOR is honored here.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	// Trust TERM/COLORTERM when they claim more than the detector reports.
	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") && (profile == termenv.Ascii || profile == termenv.ANSI) {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}

// themeFromEnv resolves the background preference. ok is false when nothing
// decides it and Lip Gloss detection should stand.
//
// Priority:
// 1) explicit theme (flag/config, then TODO_TUI_THEME) light|dark|auto
// 2) COLORFGBG heuristic ("fg;bg", bg < 7 is dark)
func themeFromEnv(theme string) (dark bool, ok bool) {
	if strings.TrimSpace(theme) == "" {
		theme = os.Getenv("TODO_TUI_THEME")
	}
	switch strings.ToLower(strings.TrimSpace(theme)) {
	case "light":
		return false, true
	case "dark":
		return true, true
	}

	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil {
			return bg < 7, true
		}
	}
	return false, false
}

// activeTheme is the theme passed to applyThemePreference.
var activeTheme string

func applyThemePreference(theme string) {
	activeTheme = theme
	if dark, ok := themeFromEnv(theme); ok {
		lipgloss.SetHasDarkBackground(dark)
	}
}

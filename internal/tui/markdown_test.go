package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func TestMarkdownStyle_RespectsTUITheme(t *testing.T) {
	t.Setenv("TODO_TUI_MD_STYLE", "")
	t.Setenv("COLORFGBG", "")

	t.Setenv("TODO_TUI_THEME", "light")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}

	t.Setenv("TODO_TUI_THEME", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_MDStyleOverridesTheme(t *testing.T) {
	t.Setenv("COLORFGBG", "")
	t.Setenv("TODO_TUI_THEME", "light")

	t.Setenv("TODO_TUI_MD_STYLE", "dark")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyle_COLORFGBG(t *testing.T) {
	t.Setenv("TODO_TUI_MD_STYLE", "")
	t.Setenv("TODO_TUI_THEME", "auto")

	t.Setenv("COLORFGBG", "0;15")
	if got := markdownStyle(); got != "light" {
		t.Fatalf("expected light; got %q", got)
	}
	t.Setenv("COLORFGBG", "15;default;0")
	if got := markdownStyle(); got != "dark" {
		t.Fatalf("expected dark; got %q", got)
	}
}

func TestMarkdownStyleConfig_DoesNotOverrideLinkStyles(t *testing.T) {
	t.Run("dark", func(t *testing.T) {
		got := markdownStyleConfig("dark")
		want := styles.DarkStyleConfig
		assertStylePrimitiveEqual(t, got.Link, want.Link)
		assertStylePrimitiveEqual(t, got.LinkText, want.LinkText)
	})

	t.Run("light", func(t *testing.T) {
		got := markdownStyleConfig("light")
		want := styles.LightStyleConfig
		assertStylePrimitiveEqual(t, got.Link, want.Link)
		assertStylePrimitiveEqual(t, got.LinkText, want.LinkText)
	})
}

func TestRenderMarkdown(t *testing.T) {
	t.Setenv("TODO_TUI_MD_STYLE", "dark")

	if got := renderMarkdown("   ", 40); got != "" {
		t.Fatalf("expected empty output for blank input, got %q", got)
	}
	out := xansi.Strip(renderMarkdown("Here are your tasks:\n\n- **#1** buy milk", 40))
	if !strings.Contains(out, "buy milk") || !strings.Contains(out, "#1") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "**") {
		t.Fatalf("expected bold markers to be rendered, got %q", out)
	}
}

func assertStylePrimitiveEqual(t *testing.T, got ansi.StylePrimitive, want ansi.StylePrimitive) {
	t.Helper()

	if strPtrValue(got.Color) != strPtrValue(want.Color) {
		t.Fatalf("Color: got %q want %q", strPtrValue(got.Color), strPtrValue(want.Color))
	}
	if strPtrValue(got.BackgroundColor) != strPtrValue(want.BackgroundColor) {
		t.Fatalf("BackgroundColor: got %q want %q", strPtrValue(got.BackgroundColor), strPtrValue(want.BackgroundColor))
	}
	if boolPtrValue(got.Bold) != boolPtrValue(want.Bold) {
		t.Fatalf("Bold: got %v want %v", boolPtrValue(got.Bold), boolPtrValue(want.Bold))
	}
	if boolPtrValue(got.Underline) != boolPtrValue(want.Underline) {
		t.Fatalf("Underline: got %v want %v", boolPtrValue(got.Underline), boolPtrValue(want.Underline))
	}
}

func strPtrValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func boolPtrValue(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func TestRenderReply_UsesTheme(t *testing.T) {
	t.Setenv("TODO_TUI_MD_STYLE", "")
	t.Setenv("TODO_TUI_THEME", "")
	dark := lipgloss.HasDarkBackground()
	t.Cleanup(func() {
		activeTheme = ""
		lipgloss.SetHasDarkBackground(dark)
	})

	out := xansi.Strip(RenderReply("Created task **#3**: call mom", 60, "light"))
	if !strings.Contains(out, "#3") || strings.Contains(out, "**") {
		t.Fatalf("unexpected output %q", out)
	}
	if got := markdownStyle(); got != "light" {
		t.Fatalf("markdownStyle() = %q, want light", got)
	}
}

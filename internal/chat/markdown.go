package chat

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"todo-dashboard/internal/format"
)

// Raw HTML stays disabled (no html.WithUnsafe) and heading ids are not generated.
var replyRenderer = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,
		emoji.Emoji,
	),
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// The renderer omits raw HTML and escapes code spans, so only tags goldmark
// emitted itself can match here.
var classReplacer = strings.NewReplacer(
	"<p>", `<p class="md-paragraph">`,
	"<h1>", `<h1 class="md-heading">`,
	"<h2>", `<h2 class="md-heading">`,
	"<h3>", `<h3 class="md-heading">`,
	"<strong>", `<strong class="md-bold">`,
	"<em>", `<em class="md-italic">`,
	"<ul>", `<ul class="md-list">`,
	"<ol>", `<ol class="md-list">`,
	"<ol start=", `<ol class="md-list" start=`,
	"<li>", `<li class="md-list-item">`,
	"<code>", `<code class="md-code">`,
	`<code class="language-`, `<code class="md-code language-`,
	"<pre>", `<pre class="md-pre">`,
	"<blockquote>", `<blockquote class="md-blockquote">`,
)

// RenderMarkdown converts an assistant reply to classed HTML.
func RenderMarkdown(src string) template.HTML {
	if strings.TrimSpace(src) == "" {
		return ""
	}
	var b bytes.Buffer
	if err := replyRenderer.Convert([]byte(src), &b); err != nil {
		return template.HTML(`<pre class="md-pre">` + format.EscapeHTML(src) + "</pre>")
	}
	return template.HTML(classReplacer.Replace(b.String()))
}

// RenderText escapes plain text for display.
func RenderText(s string) template.HTML {
	return template.HTML(format.EscapeHTML(s))
}

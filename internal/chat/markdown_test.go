package chat

import (
	"strings"
	"testing"
)

func TestRenderMarkdown_Classes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want []string
	}{
		{name: "bold", src: "**bold**", want: []string{`<p class="md-paragraph">`, `<strong class="md-bold">bold</strong>`}},
		{name: "italic", src: "_it_", want: []string{`<em class="md-italic">it</em>`}},
		{name: "heading", src: "## Tasks", want: []string{`<h2 class="md-heading">Tasks</h2>`}},
		{name: "list", src: "- a\n- b", want: []string{`<ul class="md-list">`, `<li class="md-list-item">a</li>`}},
		{name: "ordered from 3", src: "3. a\n4. b", want: []string{`<ol class="md-list" start="3">`}},
		{name: "inline code", src: "run `ls`", want: []string{`<code class="md-code">ls</code>`}},
		{name: "fenced", src: "```go\nx := 1\n```", want: []string{`<pre class="md-pre"><code class="md-code language-go">`}},
		{name: "quote", src: "> hi", want: []string{`<blockquote class="md-blockquote">`}},
		{name: "hard wraps", src: "one\ntwo", want: []string{"one<br>\ntwo"}},
		{name: "strikethrough", src: "~~gone~~", want: []string{"<del>gone</del>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(RenderMarkdown(tt.src))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Fatalf("RenderMarkdown(%q) = %q, missing %q", tt.src, got, w)
				}
			}
		})
	}
}

func TestRenderMarkdown_NoHeadingIDs(t *testing.T) {
	t.Parallel()
	if got := string(RenderMarkdown("# Title")); strings.Contains(got, "id=") {
		t.Fatalf("unexpected heading id: %q", got)
	}
}

func TestRenderMarkdown_RawHTMLIsNotPassedThrough(t *testing.T) {
	t.Parallel()

	got := string(RenderMarkdown("hello <script>alert(1)</script> <p>x</p>"))
	if strings.Contains(got, "<script>") {
		t.Fatalf("raw script survived: %q", got)
	}
	if strings.Count(got, `<p class="md-paragraph">`) != 1 {
		t.Fatalf("literal <p> in text must not become markup: %q", got)
	}
}

func TestRenderText_Escapes(t *testing.T) {
	t.Parallel()
	got := string(RenderText(`<b>"x" & 'y'</b>`))
	want := "&lt;b&gt;&quot;x&quot; &amp; &#39;y&#39;&lt;/b&gt;"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

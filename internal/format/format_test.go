package format

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestEscapeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "plain", want: "plain"},
		{in: `<script>alert(1)</script>`, want: "&lt;script&gt;alert(1)&lt;/script&gt;"},
		{in: `a & b "c" 'd'`, want: "a &amp; b &quot;c&quot; &#39;d&#39;"},
		{in: "&amp;", want: "&amp;amp;"},
	}
	for _, tt := range tests {
		if got := EscapeHTML(tt.in); got != tt.want {
			t.Fatalf("EscapeHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscapeHTML_NoRawMarkupSurvives(t *testing.T) {
	t.Parallel()

	got := EscapeHTML(`<img src=x onerror="alert('x')">`)
	for _, ch := range []string{"<", ">", `"`, "'"} {
		if strings.Contains(got, ch) {
			t.Fatalf("escaped output still contains %q: %s", ch, got)
		}
	}
}

type textPayload struct{ msg string }

func (p textPayload) WriteText(w io.Writer) error {
	_, err := io.WriteString(w, p.msg+"\n")
	return err
}

func TestWrite(t *testing.T) {
	t.Parallel()

	var b bytes.Buffer
	if err := Write(&b, map[string]int{"a": 1}, "json", false); err != nil {
		t.Fatalf("json: %v", err)
	}
	if b.String() != "{\"a\":1}\n" {
		t.Fatalf("json output: %q", b.String())
	}

	b.Reset()
	if err := Write(&b, textPayload{msg: "hello"}, "text", false); err != nil {
		t.Fatalf("text: %v", err)
	}
	if b.String() != "hello\n" {
		t.Fatalf("text output: %q", b.String())
	}

	b.Reset()
	if err := Write(&b, map[string]int{"a": 1}, "text", false); err != nil {
		t.Fatalf("text fallback: %v", err)
	}
	if !strings.Contains(b.String(), "\"a\": 1") {
		t.Fatalf("text fallback should be pretty json: %q", b.String())
	}

	if err := Write(&b, nil, "yaml", false); err == nil {
		t.Fatal("expected unknown format error")
	}
}

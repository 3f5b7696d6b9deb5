package render

import (
	"strings"
	"testing"
)

func TestCleanMarkdown(t *testing.T) {
	if got := CleanMarkdown("```markdown\n**bold**\n```"); got != "**bold**" {
		t.Errorf("got %q", got)
	}
	if got := CleanMarkdown("```\ntext\n```"); got != "text" {
		t.Errorf("got %q", got)
	}
	if got := CleanMarkdown("  plain  "); got != "plain" {
		t.Errorf("got %q", got)
	}
}

func TestHTML(t *testing.T) {
	out := HTML("**Growth** is strong.\n\n| a | b |\n|---|---|\n| 1 | 2 |")
	if !strings.Contains(out, "<strong>Growth</strong>") {
		t.Errorf("bold not rendered: %s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("table not rendered: %s", out)
	}
	if strings.Contains(HTML("<script>alert(1)</script>"), "<script>") {
		t.Error("raw html passed through")
	}
}

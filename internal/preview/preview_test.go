package preview

import (
	"strings"
	"testing"
)

func TestRenderStructure(t *testing.T) {
	markdown := "# Problem 1\n\n## a)\n\n> Step one.\n\nThe roots are $x = 4, -2$\n"

	html, err := Render(markdown, "Homework 3")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	wantFragments := []string{
		"<!DOCTYPE html>",
		"<title>Homework 3</title>",
		"<h1>Problem 1</h1>",
		"<h2>a)</h2>",
		"<blockquote>",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(html, frag) {
			t.Errorf("preview missing %q:\n%s", frag, html)
		}
	}
}

func TestRenderDefaultTitle(t *testing.T) {
	html, err := Render("# Problem 1\n", "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<title>Homework Preview</title>") {
		t.Errorf("default title missing:\n%s", html)
	}
}

func TestRenderMathAsMathML(t *testing.T) {
	html, err := Render("Value $x^2$ here.\n", "")
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(html, "<math") {
		t.Errorf("inline math not converted to MathML:\n%s", html)
	}
	if strings.Contains(html, "$x^2$") {
		t.Errorf("raw delimiters leaked into HTML:\n%s", html)
	}
}

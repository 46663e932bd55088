package document

import "testing"

func TestLetterLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "a"},
		{2, "b"},
		{26, "z"},
		{27, "aa"},
		{28, "ab"},
		{0, ""},
		{-3, ""},
	}

	for _, tt := range tests {
		if got := LetterLabel(tt.n); got != tt.want {
			t.Errorf("LetterLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRomanLabel(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "i"},
		{2, "ii"},
		{3, "iii"},
		{4, "iv"},
		{5, "v"},
		{9, "ix"},
		{14, "xiv"},
		{40, "xl"},
		{0, ""},
	}

	for _, tt := range tests {
		if got := RomanLabel(tt.n); got != tt.want {
			t.Errorf("RomanLabel(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestParseRoman(t *testing.T) {
	tests := []struct {
		s    string
		want int
	}{
		{"i", 1},
		{"ii", 2},
		{"iv", 4},
		{"ix", 9},
		{"xiv", 14},
		{"", 0},
		{"iiii", 0}, // malformed
		{"abc", 0},  // not roman
		{"vx", 0},   // malformed
	}

	for _, tt := range tests {
		if got := ParseRoman(tt.s); got != tt.want {
			t.Errorf("ParseRoman(%q) = %d, want %d", tt.s, got, tt.want)
		}
	}
}

func TestRomanRoundTrip(t *testing.T) {
	for n := 1; n <= 50; n++ {
		s := RomanLabel(n)
		if got := ParseRoman(s); got != n {
			t.Errorf("ParseRoman(RomanLabel(%d)) = %d", n, got)
		}
	}
}

func TestDocumentClone(t *testing.T) {
	doc := &Document{
		Problems: []*Problem{
			{
				Number: 1,
				Blocks: []Block{{Kind: KindParagraph, Text: "intro"}},
				Parts: []*Part{
					{
						Label:  "a",
						Blocks: []Block{{Kind: KindProofBlock, Lines: []string{"step one"}}},
						SubParts: []*SubPart{
							{Label: "i", Blocks: []Block{{Kind: KindEquationLine, Text: "$x = 1$"}}},
						},
					},
				},
			},
		},
	}

	clone := doc.Clone()
	clone.Problems[0].Number = 9
	clone.Problems[0].Blocks[0].Text = "changed"
	clone.Problems[0].Parts[0].Blocks[0].Lines[0] = "changed"

	if doc.Problems[0].Number != 1 {
		t.Error("clone shares problem with original")
	}
	if doc.Problems[0].Blocks[0].Text != "intro" {
		t.Error("clone shares block text with original")
	}
	if doc.Problems[0].Parts[0].Blocks[0].Lines[0] != "step one" {
		t.Error("clone shares proof lines with original")
	}
}

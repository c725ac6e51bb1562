package utils

import "testing"

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		limit  int
		expect string
	}{
		{name: "non-positive limit", input: "EXPERIENCE", limit: 0, expect: ""},
		{name: "fits", input: "SKILLS", limit: 10, expect: "SKILLS"},
		{name: "cut with ellipsis", input: "Backend Engineer at Acme", limit: 7, expect: "Backend..."},
		{name: "whitespace trimmed first", input: "\n  Go, SQL  \n", limit: 7, expect: "Go, SQL"},
		{name: "multibyte runes kept whole", input: "Yazılım Mühendisi", limit: 7, expect: "Yazılım..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := TruncateForLog(tt.input, tt.limit); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

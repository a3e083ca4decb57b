package parser

import "testing"

func TestValidateID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"", true},
		{"p1", true},
		{"_hidden", true},
		{"GEOMETRY_1f0c-4e.2", true},
		{"café", true},
		{"1abc", false},
		{"-abc", false},
		{"a:b", false},
		{"a b", false},
		{"a#b", false},
		{"a/b", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := ValidateID(tt.id); got != tt.want {
				t.Errorf("ValidateID(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}

func TestValidDimension(t *testing.T) {
	for d, want := range map[int]bool{1: false, 2: true, 3: true, 4: false} {
		if got := validDimension(d); got != want {
			t.Errorf("validDimension(%d) = %v, want %v", d, got, want)
		}
	}
}

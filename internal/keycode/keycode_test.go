package keycode

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		want  Code
	}{
		{"a", A},
		{"A", A},
		{"return", Return},
		{"enter", Return},
		{"yen", JISYen},
		{"0x0e", E},
		{"36", Return},
		{"  space ", Space},
		{"`", Grave},
		{"_", JISUnderscore},
		{"lang1", JISKana},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseUnknown(t *testing.T) {
	for _, input := range []string{"", "hyper", "0x1ffff"} {
		if _, err := Parse(input); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("Parse(%q) error = %v, want ErrUnknownKey", input, err)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for code := range names {
		got, err := Parse(code.String())
		if err != nil {
			t.Fatalf("Parse(%q): %v", code.String(), err)
		}
		if got != code {
			t.Errorf("round trip of %v gave %v", code, got)
		}
	}
}

func TestStringUnnamed(t *testing.T) {
	if got := Code(0x7f).String(); got != "0x7f" {
		t.Errorf("String() = %q, want 0x7f", got)
	}
	if Code(0x7f).Known() {
		t.Error("0x7f should not be known")
	}
}

func TestDigitRowIsNotContiguous(t *testing.T) {
	// Guards the reason the classifier uses a lookup table for digits.
	if Digit5 == Digit4+1 {
		t.Error("digit row unexpectedly contiguous at 4/5")
	}
	if Digit6 > Digit5 {
		t.Error("expected 6 to precede 5 in code order")
	}
}

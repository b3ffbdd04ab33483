package shared

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalize(t *testing.T) {
	tc := []struct {
		name  string
		field string
		want  string
	}{
		{name: "empty", field: "", want: ""},
		{name: "descriptive suffix only", field: "Original Mix", want: ""},
		{name: "suffix and punctuation", field: "Track (Original Mix) #1!", want: "track1"},
		{name: "mixed case artist", field: "DJ X", want: "djx"},
		{name: "suffix inside a word", field: "Remixed", want: "reed"},
		{name: "tabs and newlines", field: "Sunday\tKlang\n", want: "sundayklang"},
		{name: "accented letters dropped", field: "Tiësto", want: "tisto"},
		{name: "digits kept", field: "Track 09", want: "track09"},
		{name: "fragments joined by compaction", field: "Mi x Tape", want: "tape"},
		{name: "punctuation joins a suffix", field: "Mi-x Tape", want: "tape"},
		{name: "removal exposes a suffix", field: "mmixix", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.field)
			if err != nil {
				t.Fatalf("Normalize(%q) returned error: %v", tt.field, err)
			}
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"", "Original Mix", "Track (Original Mix) #1!", "Klang (Original Mix)", "dj x",
		"Mi x Tape", "orig inal", "mmixix", "Sunday Klang - Extended", "Ünïcödé Ärtist", "   ",
	}

	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("Normalize(%q) returned error: %v", once, err)
		}
		if once != twice {
			t.Errorf("Normalize is not idempotent for %q: %q then %q", in, once, twice)
		}
		for _, r := range once {
			if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')) {
				t.Errorf("Normalize(%q) = %q contains %q", in, once, r)
			}
		}
	}
}

func TestNormalize_InvalidInput(t *testing.T) {
	_, err := Normalize(string([]byte{0xff, 0xfe, 'a'}))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestApplyLogLevel(t *testing.T) {
	t.Run("valid level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		if err := ApplyLogLevel(logger, "WARN"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != log.WarnLevel {
			t.Errorf("expected warn level, got %v", logger.GetLevel())
		}
		logger.Info("hidden")
		if strings.Contains(buf.String(), "hidden") {
			t.Error("info message should be filtered at warn level")
		}
	})

	t.Run("empty level is ignored", func(t *testing.T) {
		logger := NewLogger(&bytes.Buffer{})
		before := logger.GetLevel()
		if err := ApplyLogLevel(logger, " "); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if logger.GetLevel() != before {
			t.Error("level should not change")
		}
	})

	t.Run("unknown level", func(t *testing.T) {
		err := ApplyLogLevel(NewLogger(&bytes.Buffer{}), "loud")
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct IDs")
	}
	if len(a) != 36 {
		t.Errorf("expected 36 character uuid, got %q", a)
	}
}

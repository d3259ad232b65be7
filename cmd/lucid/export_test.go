package main

import (
	"testing"

	"github.com/lucid-lang/lucid/internal/serialize"
)

func TestParseFormatRecognizesEachFormat(t *testing.T) {
	cases := map[string]serialize.Format{
		"json": serialize.JSON,
		"yaml": serialize.YAML,
		"toml": serialize.TOML,
	}
	for s, want := range cases {
		got, err := parseFormat(s)
		if err != nil {
			t.Fatalf("parseFormat(%q): %v", s, err)
		}
		if got != want {
			t.Fatalf("parseFormat(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestParseFormatRejectsUnknown(t *testing.T) {
	if _, err := parseFormat("xml"); err == nil {
		t.Fatalf("expected an error for an unsupported format")
	}
}

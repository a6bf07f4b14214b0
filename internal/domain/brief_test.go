package domain

import (
	"errors"
	"testing"
)

func TestBriefNormalizeDefaults(t *testing.T) {
	b := &Brief{Transcript: "  hola equipo  "}
	b.Normalize("")

	if b.Transcript != "hola equipo" {
		t.Fatalf("Transcript = %q, want trimmed value", b.Transcript)
	}
	if b.Technique != DefaultTechnique {
		t.Fatalf("Technique = %q, want %q", b.Technique, DefaultTechnique)
	}
	if b.Length != DefaultLength {
		t.Fatalf("Length = %q, want %q", b.Length, DefaultLength)
	}
	if b.Locale != "es" {
		t.Fatalf("Locale = %q, want %q", b.Locale, "es")
	}
}

func TestBriefNormalizeKeepsExplicitValues(t *testing.T) {
	b := &Brief{
		Transcript: "memo",
		Technique:  "STORYTELLING",
		Length:     "Long",
	}
	b.Normalize("en")

	if b.Technique != TechniqueStorytelling {
		t.Fatalf("Technique = %q, want %q", b.Technique, TechniqueStorytelling)
	}
	if b.Length != LengthLong {
		t.Fatalf("Length = %q, want %q", b.Length, LengthLong)
	}
	if b.Locale != "en" {
		t.Fatalf("Locale = %q, want preferred locale", b.Locale)
	}
}

func TestBriefNormalizeUnknownTechniqueFallsBack(t *testing.T) {
	b := &Brief{Transcript: "memo", Technique: "hypnosis", Length: "xxl"}
	b.Normalize("")
	if b.Technique != DefaultTechnique {
		t.Fatalf("Technique = %q, want fallback %q", b.Technique, DefaultTechnique)
	}
	if b.Length != DefaultLength {
		t.Fatalf("Length = %q, want fallback %q", b.Length, DefaultLength)
	}
}

func TestBriefValidateRequiresTranscript(t *testing.T) {
	b := Brief{}
	b.Normalize("")
	if err := b.Validate(); !errors.Is(err, ErrInvalidBrief) {
		t.Fatalf("Validate() = %v, want ErrInvalidBrief", err)
	}
}

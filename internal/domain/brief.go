package domain

import (
	"fmt"
	"strings"
)

// Technique identifies the copywriting style applied to a draft.
type Technique string

const (
	TechniqueDirectSale    Technique = "direct_sale"
	TechniqueValueOffer    Technique = "value_offer"
	TechniqueEmpathy       Technique = "empathy"
	TechniqueMinimalist    Technique = "minimalist"
	TechniqueNewsletter    Technique = "newsletter"
	TechniqueStorytelling  Technique = "storytelling"
	TechniqueEducational   Technique = "educational"
	TechniqueStrategic     Technique = "strategic"
	TechniqueTechnical     Technique = "technical"
	TechniqueNoFilter      Technique = "no_filter"
	DefaultTechnique                 = TechniqueValueOffer
)

// Length identifies the requested draft length.
type Length string

const (
	LengthShort   Length = "short"
	LengthMedium  Length = "medium"
	LengthLong    Length = "long"
	DefaultLength        = LengthMedium
)

var knownTechniques = map[Technique]struct{}{
	TechniqueDirectSale:   {},
	TechniqueValueOffer:   {},
	TechniqueEmpathy:      {},
	TechniqueMinimalist:   {},
	TechniqueNewsletter:   {},
	TechniqueStorytelling: {},
	TechniqueEducational:  {},
	TechniqueStrategic:    {},
	TechniqueTechnical:    {},
	TechniqueNoFilter:     {},
}

// Brief is the input for one email draft: the memo transcript plus the
// requested technique, length, and output language.
type Brief struct {
	Transcript   string    `json:"transcript"`
	Technique    Technique `json:"technique"`
	Length       Length    `json:"length"`
	Locale       string    `json:"locale"`
	BrandName    string    `json:"brand_name,omitempty"`
	BrandContext string    `json:"brand_context,omitempty"`
}

// Normalize applies server defaults: unknown techniques and lengths fall
// back rather than fail, so stale clients keep working.
func (b *Brief) Normalize(preferredLocale string) {
	if b == nil {
		return
	}
	b.Transcript = strings.TrimSpace(b.Transcript)
	if _, ok := knownTechniques[Technique(strings.ToLower(string(b.Technique)))]; ok {
		b.Technique = Technique(strings.ToLower(string(b.Technique)))
	} else {
		b.Technique = DefaultTechnique
	}
	switch Length(strings.ToLower(string(b.Length))) {
	case LengthShort, LengthMedium, LengthLong:
		b.Length = Length(strings.ToLower(string(b.Length)))
	default:
		b.Length = DefaultLength
	}
	if b.Locale == "" {
		if preferredLocale != "" {
			b.Locale = preferredLocale
		} else {
			b.Locale = "es"
		}
	}
}

// Validate checks the brief after normalization.
func (b Brief) Validate() error {
	if b.Transcript == "" {
		return fmt.Errorf("%w: transcript is required", ErrInvalidBrief)
	}
	return nil
}

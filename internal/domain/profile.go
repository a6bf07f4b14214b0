package domain

import "time"

// ProfileColor is one of the fixed accent colors a profile can use.
type ProfileColor string

const (
	ColorBlue    ProfileColor = "blue"
	ColorOrange  ProfileColor = "orange"
	ColorEmerald ProfileColor = "emerald"
	ColorViolet  ProfileColor = "violet"
	ColorRose    ProfileColor = "rose"
)

// NormalizeColor falls back to blue for unknown values.
func NormalizeColor(raw string) ProfileColor {
	switch ProfileColor(raw) {
	case ColorBlue, ColorOrange, ColorEmerald, ColorViolet, ColorRose:
		return ProfileColor(raw)
	}
	return ColorBlue
}

// IdentityProfile is one verbal identity: brand voice documents plus
// optional company context the copywriter can draw on.
type IdentityProfile struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Color             ProfileColor `json:"color"`
	Brand             string       `json:"brand"`
	CompanyContext    string       `json:"company_context,omitempty"`
	UseCompanyContext bool         `json:"use_company_context"`
	Docs              []string     `json:"docs"`
	DocNames          []string     `json:"doc_names"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}

// ClampDocs enforces the per-profile document slot count. Extra slots are
// dropped, missing slots are padded with empties so clients always see a
// fixed-size array.
func (p *IdentityProfile) ClampDocs(slots int) {
	if slots < 0 {
		slots = 0
	}
	clamp := func(in []string) []string {
		out := make([]string, slots)
		copy(out, in)
		return out
	}
	p.Docs = clamp(p.Docs)
	p.DocNames = clamp(p.DocNames)
}

// CatalogItem is one product or service a profile can reference in drafts.
type CatalogItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       string `json:"price,omitempty"`
}

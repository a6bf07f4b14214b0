package draft

import (
	"context"
	"strings"
)

// StaticWriter is the offline fallback: it shapes the transcript into the
// hook / body / call-to-action skeleton without rewriting the user's words.
type StaticWriter struct{}

func NewStaticWriter() *StaticWriter {
	return &StaticWriter{}
}

func (s *StaticWriter) Compose(ctx context.Context, req Request) (*Draft, error) {
	transcript := strings.TrimSpace(req.Brief.Transcript)
	sentences := splitSentences(transcript)

	sb := &strings.Builder{}
	if len(sentences) > 0 {
		sb.WriteString("**" + sentences[0] + "**\n\n")
	}
	if len(sentences) > 1 {
		sb.WriteString(strings.Join(sentences[1:], " "))
		sb.WriteString("\n\n")
	}
	brand := strings.TrimSpace(req.Brief.BrandName)
	if brand == "" && req.Profile != nil {
		brand = strings.TrimSpace(req.Profile.Brand)
	}
	switch req.Brief.Locale {
	case "en":
		sb.WriteString("**Reply to this email and let's talk.**")
	default:
		sb.WriteString("**Responde a este email y hablamos.**")
	}
	if brand != "" {
		sb.WriteString("\n\n" + brand)
	}
	return &Draft{Email: sb.String(), Provider: staticProviderName}, nil
}

func splitSentences(text string) []string {
	var out []string
	var current strings.Builder
	for _, r := range text {
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if s := strings.TrimSpace(current.String()); s != "" {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}
	return out
}

var _ Writer = (*StaticWriter)(nil)

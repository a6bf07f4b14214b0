package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func localeThrough(t *testing.T, lookup CountryLookup, build func(r *http.Request)) (string, string) {
	t.Helper()
	var locale, country string
	handler := I18N("es", lookup)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale = LocaleFromContext(r.Context())
		country = CountryFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if build != nil {
		build(req)
	}
	handler.ServeHTTP(httptest.NewRecorder(), req)
	return locale, country
}

func TestI18NDefaultsToSpanish(t *testing.T) {
	locale, _ := localeThrough(t, nil, nil)
	if locale != "es" {
		t.Fatalf("expected default locale es, got %q", locale)
	}
}

func TestI18NExplicitHeaderWins(t *testing.T) {
	locale, _ := localeThrough(t, nil, func(r *http.Request) {
		r.Header.Set("X-Locale", "ja")
		r.Header.Set("Accept-Language", "fr-FR,fr;q=0.9")
	})
	if locale != "ja" {
		t.Fatalf("expected ja from X-Locale, got %q", locale)
	}
}

func TestI18NAcceptLanguageMatching(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"ca-ES,ca;q=0.9,es;q=0.8", "ca"},
		{"pt-BR", "pt"},
		{"de-CH,de;q=0.9", "de"},
		{"zh-Hans-CN", "zh"},
		{"en-US,en;q=0.5", "en"},
	}
	for _, tc := range cases {
		locale, _ := localeThrough(t, nil, func(r *http.Request) {
			r.Header.Set("Accept-Language", tc.header)
		})
		if locale != tc.want {
			t.Fatalf("Accept-Language %q: expected %q, got %q", tc.header, tc.want, locale)
		}
	}
}

func TestI18NCountryHeaderFallsBackToRegionLanguage(t *testing.T) {
	locale, country := localeThrough(t, nil, func(r *http.Request) {
		r.Header.Set("CF-IPCountry", "jp")
	})
	if country != "JP" {
		t.Fatalf("expected country JP, got %q", country)
	}
	if locale != "ja" {
		t.Fatalf("expected ja for JP with no language hints, got %q", locale)
	}
}

func TestI18NGeoIPLookupUsedLast(t *testing.T) {
	lookup := func(ip string) (string, error) {
		if ip != "203.0.113.7" {
			return "", errors.New("unexpected ip")
		}
		return "BR", nil
	}
	locale, country := localeThrough(t, lookup, func(r *http.Request) {
		r.RemoteAddr = "203.0.113.7:4455"
	})
	if country != "BR" || locale != "pt" {
		t.Fatalf("expected BR/pt from lookup, got %q/%q", country, locale)
	}
}

func TestNormalizeLocaleUnknownIsEmpty(t *testing.T) {
	if got := NormalizeLocale("tlh"); got != "" {
		t.Fatalf("expected no match for Klingon, got %q", got)
	}
	if got := NormalizeLocale("ES-es"); got != "es" {
		t.Fatalf("expected case-insensitive es, got %q", got)
	}
}

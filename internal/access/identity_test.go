package access

import "testing"

func TestIsFounder(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"hola@tonimont.com", true},
		{"HOLA@TONIMONT.COM", true},
		{"  hola@tonimont.com  ", true},
		{"", false},
		{"   ", false},
		{"someone@example.com", false},
		{"hola@tonimont.com.evil.com", false},
	}
	for _, tc := range cases {
		if got := IsFounder(tc.email); got != tc.want {
			t.Fatalf("IsFounder(%q) = %v, want %v", tc.email, got, tc.want)
		}
	}
}

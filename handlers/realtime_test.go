package handlers

import (
	"net/http/httptest"
	"testing"
)

func TestOriginChecker(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"native client", []string{"https://app.example.com"}, "", true},
		{"wildcard", []string{"*"}, "https://evil.example.com", true},
		{"unset", nil, "https://any.example.com", true},
		{"allowed", []string{"https://app.example.com"}, "https://app.example.com", true},
		{"rejected", []string{"https://app.example.com"}, "https://evil.example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := originChecker(tt.allowed)(r); got != tt.want {
				t.Errorf("originChecker = %v, want %v", got, tt.want)
			}
		})
	}
}

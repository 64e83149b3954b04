package logging

import "testing"

func TestMaskHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		value  string
		want   string
	}{
		{"password fully redacted", "X-Admin-Password", "hunter2hunter2", "[REDACTED]"},
		{"secret fully redacted", "X-Bootstrap-Secret", "open-sesame", "[REDACTED]"},
		{"authorization keeps last 4", "Authorization", "Bearer abcdef1234", "****1234"},
		{"authorization case insensitive", "AUTHORIZATION", "Bearer abcdef1234", "****1234"},
		{"api token header", "X-API-Token", "dli_deadbeefcafe", "dli_****cafe"},
		{"api key header", "X-Api-Key", "abcdef1234", "****1234"},
		{"other header unchanged", "Content-Type", "application/json", "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskHeader(tt.header, tt.value); got != tt.want {
				t.Errorf("MaskHeader(%q, %q) = %q, want %q", tt.header, tt.value, got, tt.want)
			}
		})
	}
}

func TestMaskSecret(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value string
		want  string
	}{
		{"", "****"},
		{"short", "****"},
		{"1234567", "****"},
		{"abcdef1234", "****1234"},
		{"dli_deadbeefcafe", "dli_****cafe"},
	}

	for _, tt := range tests {
		if got := MaskSecret(tt.value); got != tt.want {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

package channel

import "testing"

func TestFromToken(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"empty token", "", Latest},
		{"stable version", "1.2.3", Latest},
		{"stable with many segments", "10.20.30", Latest},
		{"beta prerelease", "1.2.3-beta.1", Beta},
		{"alpha prerelease", "0.1.0-alpha", Alpha},
		{"rc prerelease", "2.0.0-rc.2", RC},
		{"canary prerelease", "1.0.0-canary.20260801", Canary},
		{"next prerelease", "3.0.0-next.0", Next},
		{"unknown prerelease suffix", "1.2.3-unknownrc", Latest},
		{"suffix must be prefix not substring", "1.2.3-mybeta", Latest},
		{"dist-tag passthrough", "canary", Canary},
		{"custom dist-tag passthrough", "nightly", "nightly"},
		{"latest dist-tag", "latest", Latest},
		{"digit version no dash", "20260801", Latest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromToken(tt.token)
			if got != tt.want {
				t.Errorf("FromToken(%q) = %q, want %q", tt.token, got, tt.want)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	for _, name := range []string{Latest, Beta, Alpha, RC, Canary, Next} {
		if !Known(name) {
			t.Errorf("Known(%q) = false, want true", name)
		}
	}

	for _, name := range []string{"", "nightly", "Latest", "1.2.3"} {
		if Known(name) {
			t.Errorf("Known(%q) = true, want false", name)
		}
	}
}

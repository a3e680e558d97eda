package version

import "testing"

func TestIsNewerVersion(t *testing.T) {
	tests := []struct {
		name     string
		latest   string
		current  string
		expected bool
	}{
		{"same version", "0.1.0", "0.1.0", false},
		{"patch upgrade", "0.1.1", "0.1.0", true},
		{"patch downgrade", "0.1.0", "0.1.1", false},
		{"minor upgrade", "0.2.0", "0.1.9", true},
		{"major upgrade", "1.0.0", "0.9.9", true},
		{"multi-digit patch", "0.1.100", "0.1.99", true},
		{"different lengths ahead", "1.0", "0.1.2", true},
		{"different lengths behind", "0.1.2", "1.0", false},
		{"dev suffix ahead", "0.1.1-dev", "0.1.0", true},
		{"pre-release below its release", "0.1.0-alpha", "0.1.0", false},
		{"build metadata ignored", "0.1.1+build123", "0.1.0", true},
		{"pre-release ordering", "0.1.1-beta", "0.1.1-alpha", true},
		{"v prefix accepted", "v0.2.0", "0.1.0", true},
		{"garbage tag never updates", "garbage", "0.1.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isNewerVersion(tt.latest, tt.current)
			if result != tt.expected {
				t.Errorf("isNewerVersion(%q, %q) = %v, want %v", tt.latest, tt.current, result, tt.expected)
			}
		})
	}
}

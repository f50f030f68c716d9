package model

import (
	"errors"
	"testing"
)

// TestIsValidURL tests the http/https scheme predicate.
func TestIsValidURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  bool
	}{
		{"http URL", "http://example.com", true},
		{"https URL", "https://example.com", true},
		{"bare http scheme", "http://", true},
		{"https with single char host", "https://x", true},
		{"leading whitespace", "  https://example.com", true},
		{"trailing whitespace", "https://example.com  ", true},
		{"malformed but prefixed", "http://///", true},
		{"empty string", "", false},
		{"whitespace only", "   ", false},
		{"no scheme", "example.com", false},
		{"ftp scheme", "ftp://example.com", false},
		{"uppercase scheme", "HTTP://example.com", false},
		{"scheme inside string", "see http://example.com", false},
		{"file scheme", "file:///etc/passwd", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsValidURL(tc.input); got != tc.want {
				t.Errorf("IsValidURL(%q) = %v, expected %v", tc.input, got, tc.want)
			}
		})
	}
}

// TestParseStandard tests CLI token parsing.
func TestParseStandard(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		token   string
		want    Standard
		wantErr bool
	}{
		{"wcag2a", StandardWCAG2A, false},
		{"wcag2aa", StandardWCAG2AA, false},
		{"best-practice", StandardBestPractice, false},
		{"bestpractice", StandardBestPractice, false},
		{"aria", StandardAria, false},
		{"WCAG2AA", StandardWCAG2AA, false},
		{" aria ", StandardAria, false},
		{"wcag3", 0, true},
		{"", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStandard(tc.token)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownStandard) {
					t.Fatalf("expected ErrUnknownStandard, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseStandard(%q) = %v, expected %v", tc.token, got, tc.want)
			}
		})
	}
}

// TestParseStandardsDeduplicates tests that duplicate tokens collapse.
func TestParseStandardsDeduplicates(t *testing.T) {
	t.Parallel()

	standards, err := ParseStandards([]string{"wcag2a", "aria", "wcag2a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(standards) != 2 {
		t.Fatalf("expected 2 standards, got %d", len(standards))
	}
	if standards[0] != StandardWCAG2A || standards[1] != StandardAria {
		t.Errorf("unexpected order: %v", standards)
	}
}

// TestStandardsCSV tests that the auditor tokens are joined verbatim.
// These spellings are part of the subprocess contract.
func TestStandardsCSV(t *testing.T) {
	t.Parallel()

	got := StandardsCSV([]Standard{StandardWCAG2A, StandardWCAG2AA, StandardBestPractice, StandardAria})
	want := "WCAG 2.0A,WCAG 2.0AA,Best-practice,Aria"
	if got != want {
		t.Errorf("StandardsCSV = %q, expected %q", got, want)
	}

	if got := StandardsCSV(nil); got != "" {
		t.Errorf("StandardsCSV(nil) = %q, expected empty", got)
	}
}

// TestParseDeviceProfile tests device profile token parsing.
func TestParseDeviceProfile(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		token   string
		want    DeviceProfile
		wantErr bool
	}{
		{"desktop", ProfileDesktop, false},
		{"mobile", ProfileMobile, false},
		{"Desktop", ProfileDesktop, false},
		{"tablet", 0, true},
	}

	for _, tc := range testCases {
		t.Run(tc.token, func(t *testing.T) {
			t.Parallel()
			got, err := ParseDeviceProfile(tc.token)
			if tc.wantErr {
				if !errors.Is(err, ErrUnknownProfile) {
					t.Fatalf("expected ErrUnknownProfile, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseDeviceProfile(%q) = %v, expected %v", tc.token, got, tc.want)
			}
		})
	}
}

// TestAuditRequestValidate tests the pre-dispatch invariants.
func TestAuditRequestValidate(t *testing.T) {
	t.Parallel()

	t.Run("valid request", func(t *testing.T) {
		t.Parallel()

		req := AuditRequest{
			URL:       "https://example.com",
			Standards: []Standard{StandardWCAG2AA},
			Profile:   ProfileDesktop,
		}
		if err := req.Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid URL", func(t *testing.T) {
		t.Parallel()

		req := AuditRequest{
			URL:       "example.com",
			Standards: []Standard{StandardWCAG2AA},
		}
		if err := req.Validate(); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("expected ErrInvalidURL, got %v", err)
		}
	})

	t.Run("empty standards never dispatch", func(t *testing.T) {
		t.Parallel()

		// Mobile requests require at least one standard too.
		req := AuditRequest{
			URL:     "https://example.com",
			Profile: ProfileMobile,
		}
		if err := req.Validate(); !errors.Is(err, ErrNoStandards) {
			t.Errorf("expected ErrNoStandards, got %v", err)
		}
	})
}

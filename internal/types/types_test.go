package types

import "testing"

func TestParseAnalysisMode(t *testing.T) {
	tests := []struct {
		input   string
		want    AnalysisMode
		wantErr bool
	}{
		{"", ModeQuickScan, false},
		{"quick", ModeQuickScan, false},
		{"Quick Scan", ModeQuickScan, false},
		{"QuickScan", ModeQuickScan, false},
		{"detailed", ModeDetailed, false},
		{"Detailed Analysis", ModeDetailed, false},
		{"ats", ModeATSOptimization, false},
		{"ATS Optimization", ModeATSOptimization, false},
		{"ats_optimization", ModeATSOptimization, false},
		{"deep", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAnalysisMode(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseAnalysisMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplayNameRoundTrip(t *testing.T) {
	for _, mode := range AllModes {
		parsed, err := ParseAnalysisMode(mode.DisplayName())
		if err != nil {
			t.Fatalf("display name %q did not parse: %v", mode.DisplayName(), err)
		}
		if parsed != mode {
			t.Errorf("display name %q parsed as %q", mode.DisplayName(), parsed)
		}
	}
}

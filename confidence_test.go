package proativo

import "testing"

func TestEstimateConfidence(t *testing.T) {
	tests := []struct {
		name           string
		responseTokens int
		recordCount    int
		want           float64
	}{
		{name: "no signal", responseTokens: 0, recordCount: 0, want: 0.4},
		{name: "saturated clamps to ceiling", responseTokens: 600, recordCount: 50, want: 0.95},
		{name: "half of each share", responseTokens: 150, recordCount: 5, want: 0.7},
		{name: "negative inputs treated as zero", responseTokens: -3, recordCount: -1, want: 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := estimateConfidence(tt.responseTokens, tt.recordCount)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("estimateConfidence(%d, %d) = %v, want %v", tt.responseTokens, tt.recordCount, got, tt.want)
			}
		})
	}
}

func TestEstimateConfidenceMonotonicInRecords(t *testing.T) {
	prev := estimateConfidence(100, 0)
	for n := 1; n <= 10; n++ {
		cur := estimateConfidence(100, n)
		if cur < prev {
			t.Fatalf("confidence decreased at %d records: %v -> %v", n, prev, cur)
		}
		prev = cur
	}
}

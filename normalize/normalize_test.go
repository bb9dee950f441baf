package normalize

import (
	"reflect"
	"testing"
)

func TestNormalizeStableUnderReordering(t *testing.T) {
	a := Normalize("status maintenance transformer")
	b := Normalize("transformer status maintenance")
	if a != b {
		t.Errorf("expected identical normalization, got %q vs %q", a, b)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	queries := []string{
		"What is the status of transformer TR-01?",
		"failures on 12/05/2023",
		"Qual a situacao dos trafos?",
	}
	for _, q := range queries {
		once := Normalize(q)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("normalization of %q not idempotent: %q vs %q", q, once, twice)
		}
	}
}

func TestNormalizeSubstitutions(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "equipment id becomes placeholder",
			input: "status of TR-01",
			want:  "ID_EQUIPAMENTO status",
		},
		{
			name:  "date becomes placeholder",
			input: "failures on 12/05/2023",
			want:  "DATA failure",
		},
		{
			name:  "iso date becomes placeholder",
			input: "failures on 2023-05-12",
			want:  "DATA failure",
		},
		{
			name:  "synonyms fold",
			input: "situation of the trafos",
			want:  "status transformer",
		},
		{
			name:  "stop words drop",
			input: "show me the status of all equipment",
			want:  "equipment status",
		},
		{
			name:  "duplicates collapse",
			input: "status status STATUS",
			want:  "status",
		},
		{
			name:  "empty input",
			input: "   ",
			want:  "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{
			name: "identical queries",
			a:    "status of the main transformers",
			b:    "status of the main transformers",
			min:  1.0, max: 1.0,
		},
		{
			name: "synonym rephrase",
			a:    "Status of the main transformers",
			b:    "Situation of the main transformers",
			min:  1.0, max: 1.0,
		},
		{
			name: "different equipment same shape",
			a:    "status of TR-01",
			b:    "status of TR-02",
			min:  1.0, max: 1.0,
		},
		{
			name: "partial overlap",
			a:    "transformer maintenance cost",
			b:    "transformer maintenance cost report",
			min:  0.7, max: 0.8,
		},
		{
			name: "unrelated queries",
			a:    "failure cost of generator GE-01",
			b:    "chocolate cake recipe",
			min:  0.0, max: 0.0,
		},
		{
			name: "stop words only, identical raw",
			a:    "the of",
			b:    "the of",
			min:  1.0, max: 1.0,
		},
		{
			name: "both empty",
			a:    "",
			b:    "",
			min:  0.0, max: 0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Similarity(tt.a, tt.b)
			if got < tt.min || got > tt.max {
				t.Errorf("Similarity(%q, %q) = %.3f, want in [%.2f, %.2f]", tt.a, tt.b, got, tt.min, tt.max)
			}
		})
	}
}

func TestSimilaritySymmetric(t *testing.T) {
	a := "transformer maintenance cost"
	b := "transformer failure downtime cost"
	if x, y := Similarity(a, b), Similarity(b, a); x != y {
		t.Errorf("similarity not symmetric: %.3f vs %.3f", x, y)
	}
}

func TestEquipmentIDs(t *testing.T) {
	got := EquipmentIDs("compare TR-01 and GE02 failures on 12/05/2023")
	want := []string{"tr-01", "ge02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("EquipmentIDs = %v, want %v", got, want)
	}
}

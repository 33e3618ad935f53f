package model

import "testing"

func TestIsInteger(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{input: "0", expected: true},
		{input: "7", expected: true},
		{input: "42", expected: true},
		{input: "+3", expected: true},
		{input: "-12", expected: true},
		{input: "007", expected: false},
		{input: "-0", expected: true},
		{input: "1.0", expected: false},
		{input: "1e3", expected: false},
		{input: "", expected: false},
		{input: " 1", expected: false},
		{input: "1 ", expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := IsInteger(tt.input); got != tt.expected {
				t.Errorf("IsInteger(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsReal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{input: "1.5", expected: true},
		{input: "-0.25", expected: true},
		{input: ".5", expected: true},
		{input: "1.", expected: true},
		{input: "007", expected: true},
		{input: "1e3", expected: true},
		{input: "2.5E-4", expected: true},
		{input: "0", expected: true},
		{input: "NaN", expected: false},
		{input: "Inf", expected: false},
		{input: "-Infinity", expected: false},
		{input: "1e999", expected: false},
		{input: "1.2.3", expected: false},
		{input: "", expected: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := IsReal(tt.input); got != tt.expected {
				t.Errorf("IsReal(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestColumnTypeWiden(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		a, b     ColumnType
		expected ColumnType
	}{
		{name: "integer with integer", a: ColumnTypeInteger, b: ColumnTypeInteger, expected: ColumnTypeInteger},
		{name: "integer with real", a: ColumnTypeInteger, b: ColumnTypeReal, expected: ColumnTypeReal},
		{name: "real with integer", a: ColumnTypeReal, b: ColumnTypeInteger, expected: ColumnTypeReal},
		{name: "real with text", a: ColumnTypeReal, b: ColumnTypeText, expected: ColumnTypeText},
		{name: "text never narrows", a: ColumnTypeText, b: ColumnTypeInteger, expected: ColumnTypeText},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.a.Widen(tt.b); got != tt.expected {
				t.Errorf("%v.Widen(%v) = %v, want %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestInferColumns(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		records  []Record
		opts     InferOptions
		expected []Inference
	}{
		{
			name:     "all integers",
			records:  []Record{{"1"}, {"2"}, {"3"}},
			expected: []Inference{{Type: ColumnTypeInteger}},
		},
		{
			name:     "integer widened by real",
			records:  []Record{{"1"}, {"2.5"}},
			expected: []Inference{{Type: ColumnTypeReal}},
		},
		{
			name:     "text wins over everything",
			records:  []Record{{"1"}, {"2"}, {"x"}},
			expected: []Inference{{Type: ColumnTypeText}},
		},
		{
			name:     "empty value marks nullable",
			records:  []Record{{"1"}, {""}, {"3"}},
			expected: []Inference{{Type: ColumnTypeInteger, Nullable: true}},
		},
		{
			name:     "null sentinel ignored for typing",
			records:  []Record{{"1"}, {"NA"}, {"3"}},
			opts:     InferOptions{NullSentinel: "NA"},
			expected: []Inference{{Type: ColumnTypeInteger, Nullable: true}},
		},
		{
			name:     "all null column falls back to text",
			records:  []Record{{""}, {""}},
			expected: []Inference{{Type: ColumnTypeText, Nullable: true}},
		},
		{
			name:     "no records falls back to text",
			records:  nil,
			expected: []Inference{{Type: ColumnTypeText}},
		},
		{
			name:     "short record counts as null",
			records:  []Record{{"1", "a"}, {"2"}},
			expected: []Inference{{Type: ColumnTypeInteger}, {Type: ColumnTypeText, Nullable: true}},
		},
		{
			name:     "rows beyond sample force nullable",
			records:  []Record{{"1"}, {"2"}, {"3"}},
			opts:     InferOptions{SampleLimit: 2},
			expected: []Inference{{Type: ColumnTypeInteger, Nullable: true}},
		},
		{
			name:     "leading zero is real not integer",
			records:  []Record{{"007"}},
			expected: []Inference{{Type: ColumnTypeReal}},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			columnCount := 1
			if len(tt.expected) > 1 {
				columnCount = len(tt.expected)
			}
			got := InferColumns(columnCount, tt.records, tt.opts)
			if len(got) != len(tt.expected) {
				t.Fatalf("InferColumns() returned %d inferences, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("column %d: got %+v, want %+v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestInferColumnsValueBeyondSampleIgnored(t *testing.T) {
	t.Parallel()

	// The third row would widen to text, but only two rows are sampled.
	records := []Record{{"1"}, {"2"}, {"x"}}
	got := InferColumns(1, records, InferOptions{SampleLimit: 2})
	if got[0].Type != ColumnTypeInteger {
		t.Errorf("Type = %v, want %v", got[0].Type, ColumnTypeInteger)
	}
	if !got[0].Nullable {
		t.Error("Nullable = false, want true for unobserved rows")
	}
}

package main

import "testing"

func TestSanitizeSQL(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain SQL passes through",
			input:    "SELECT * FROM lead",
			expected: "SELECT * FROM lead",
		},
		{
			name:     "SQL fence is stripped",
			input:    "```sql\nSELECT 1\n```",
			expected: "SELECT 1",
		},
		{
			name:     "Bare fence is stripped",
			input:    "```\nSELECT 1\n```",
			expected: "SELECT 1",
		},
		{
			name:     "Surrounding whitespace is trimmed",
			input:    "  \n SELECT name FROM customer \n ",
			expected: "SELECT name FROM customer",
		},
		{
			name:     "Multiline query survives",
			input:    "```sql\nSELECT l.name,\n  COUNT(*)\nFROM lead l\nGROUP BY l.name\n```",
			expected: "SELECT l.name,\n  COUNT(*)\nFROM lead l\nGROUP BY l.name",
		},
		{
			name:     "Interior backticks are preserved",
			input:    "SELECT '```' AS fence",
			expected: "SELECT '```' AS fence",
		},
		{
			name:     "Empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := SanitizeSQL(tc.input)
			if result != tc.expected {
				t.Errorf("SanitizeSQL(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestSanitizeSQLIdempotent(t *testing.T) {
	inputs := []string{
		"```sql\nSELECT 1\n```",
		"SELECT * FROM ordertab",
		"  SELECT 1  ",
	}

	for _, input := range inputs {
		once := SanitizeSQL(input)
		twice := SanitizeSQL(once)
		if once != twice {
			t.Errorf("SanitizeSQL not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mbeaver502/CyberLawBot/internal/model"
)

func TestKeywordFilterMatch(t *testing.T) {
	filter := NewKeywordFilter([]string{"cyber", "data breach", "Encryption"})

	cases := []struct {
		name      string
		candidate model.BillCandidate
		want      bool
	}{
		{
			name:      "title match",
			candidate: model.BillCandidate{Title: "MAIN STREET Cybersecurity Act of 2017"},
			want:      true,
		},
		{
			name:      "case insensitive",
			candidate: model.BillCandidate{Title: "ENCRYPTION STANDARDS ACT"},
			want:      true,
		},
		{
			name:      "summary match",
			candidate: model.BillCandidate{Title: "A bill", Summary: "Requires notice after a data breach affecting consumers."},
			want:      true,
		},
		{
			name: "subject match",
			candidate: model.BillCandidate{
				Title:    "An Act",
				Subjects: []string{"Small business", "Computer security and cybercrime"},
			},
			want: true,
		},
		{
			name:      "multi word keyword needs both words",
			candidate: model.BillCandidate{Title: "A bill about data and nothing else"},
			want:      false,
		},
		{
			name:      "no match",
			candidate: model.BillCandidate{Title: "Post Office Naming Act", Summary: "Designates a facility."},
			want:      false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, filter.Match(&tc.candidate))
		})
	}
}

func TestKeywordFilterEmptyList(t *testing.T) {
	filter := NewKeywordFilter(nil)
	assert.False(t, filter.Match(&model.BillCandidate{Title: "Cybersecurity Act"}))

	filter = NewKeywordFilter([]string{"  ", ""})
	assert.False(t, filter.Match(&model.BillCandidate{Title: "Cybersecurity Act"}))
}

package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBillStatus(t *testing.T) {
	content, err := os.ReadFile(filepath.Join("testdata", "billstatus_s770.xml"))
	require.NoError(t, err)

	candidate, err := NewParser().Parse(content)
	require.NoError(t, err)

	assert.Equal(t, "S", candidate.Type)
	assert.Equal(t, 770, candidate.Number)
	assert.Equal(t, "Sen. Schatz, Brian [D-HI]", candidate.Sponsor)
	assert.Equal(t, "MAIN STREET Cybersecurity Act of 2017", candidate.Title)
	assert.Equal(t, "https://www.congress.gov/bill/115th-congress/senate-bill/770", candidate.FullURL)
	assert.Equal(t, "2017-03-29", candidate.Introduced.Format("2006-01-02"))

	require.True(t, candidate.Updated.Valid)
	assert.Equal(t, "2017-06-19", candidate.Updated.Time.Format("2006-01-02"))

	assert.Contains(t, candidate.Summary, "small business")
	assert.Equal(t, []string{
		"Computer security and identity theft",
		"Small business",
		"Science, Technology, Communications",
	}, candidate.Subjects)
}

func TestParseTitleFallback(t *testing.T) {
	content := []byte(`<?xml version="1.0"?>
<billStatus>
  <bill>
    <billType>HR</billType>
    <billNumber>1224</billNumber>
    <congress>115</congress>
    <introducedDate>2017-02-27</introducedDate>
    <titles>
      <item>
        <title>NIST Cybersecurity Framework, Assessment, and Auditing Act of 2017</title>
      </item>
    </titles>
  </bill>
</billStatus>`)

	candidate, err := NewParser().Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "NIST Cybersecurity Framework, Assessment, and Auditing Act of 2017", candidate.Title)
	assert.Equal(t, "https://www.congress.gov/bill/115th-congress/house-bill/1224", candidate.FullURL)
	assert.False(t, candidate.Updated.Valid)
	assert.Empty(t, candidate.Sponsor)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "not xml",
			content: "{}",
			want:    "failed to parse bill status",
		},
		{
			name: "missing type",
			content: `<billStatus><bill>
				<billNumber>1</billNumber><congress>115</congress>
				<introducedDate>2017-01-03</introducedDate>
			</bill></billStatus>`,
			want: "missing bill type",
		},
		{
			name: "bad number",
			content: `<billStatus><bill>
				<billType>S</billType><billNumber>one</billNumber><congress>115</congress>
				<introducedDate>2017-01-03</introducedDate>
			</bill></billStatus>`,
			want: "invalid bill number",
		},
		{
			name: "bad introduced date",
			content: `<billStatus><bill>
				<billType>S</billType><billNumber>1</billNumber><congress>115</congress>
				<introducedDate>January 3</introducedDate>
			</bill></billStatus>`,
			want: "invalid introduced date",
		},
		{
			name: "unknown bill type",
			content: `<billStatus><bill>
				<billType>SAMDT</billType><billNumber>1</billNumber><congress>115</congress>
				<introducedDate>2017-01-03</introducedDate>
			</bill></billStatus>`,
			want: "unknown bill type",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewParser().Parse([]byte(tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestCongressURL(t *testing.T) {
	cases := []struct {
		congress int
		billType string
		number   int
		want     string
	}{
		{115, "S", 770, "https://www.congress.gov/bill/115th-congress/senate-bill/770"},
		{111, "HR", 1, "https://www.congress.gov/bill/111th-congress/house-bill/1"},
		{112, "HJRES", 44, "https://www.congress.gov/bill/112th-congress/house-joint-resolution/44"},
		{113, "SJRES", 7, "https://www.congress.gov/bill/113th-congress/senate-joint-resolution/7"},
		{121, "SRES", 5, "https://www.congress.gov/bill/121st-congress/senate-resolution/5"},
		{102, "HCONRES", 2, "https://www.congress.gov/bill/102nd-congress/house-concurrent-resolution/2"},
		{103, "SCONRES", 3, "https://www.congress.gov/bill/103rd-congress/senate-concurrent-resolution/3"},
		{115, "HRES", 10, "https://www.congress.gov/bill/115th-congress/house-resolution/10"},
	}

	for _, tc := range cases {
		got, err := CongressURL(tc.congress, tc.billType, tc.number)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := CongressURL(115, "TREATY", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown bill type")
}

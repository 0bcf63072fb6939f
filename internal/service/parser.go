package service

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mbeaver502/CyberLawBot/internal/model"
)

const congressURLBase = "https://www.congress.gov/bill"

// billTypePaths maps a BILLSTATUS bill type to its congress.gov path segment.
var billTypePaths = map[string]string{
	"S":       "senate-bill",
	"HR":      "house-bill",
	"HJRES":   "house-joint-resolution",
	"SJRES":   "senate-joint-resolution",
	"HRES":    "house-resolution",
	"SRES":    "senate-resolution",
	"HCONRES": "house-concurrent-resolution",
	"SCONRES": "senate-concurrent-resolution",
}

// billStatusXML mirrors the subset of the GPO BILLSTATUS document the bot
// consumes. Numbers arrive as text in the feed, so they stay strings here.
type billStatusXML struct {
	XMLName xml.Name `xml:"billStatus"`
	Bill    struct {
		BillType       string   `xml:"billType"`
		BillNumber     string   `xml:"billNumber"`
		Congress       string   `xml:"congress"`
		Title          string   `xml:"title"`
		IntroducedDate string   `xml:"introducedDate"`
		UpdateDate     string   `xml:"updateDate"`
		Titles         []string `xml:"titles>item>title"`
		Sponsors       []struct {
			FullName string `xml:"fullName"`
		} `xml:"sponsors>item"`
		Summaries []struct {
			Text string `xml:"text"`
		} `xml:"summaries>billSummaries>item"`
		PolicyArea struct {
			Name string `xml:"name"`
		} `xml:"policyArea"`
		Subjects []string `xml:"subjects>billSubjects>legislativeSubjects>item>name"`
	} `xml:"bill"`
}

// Parser turns BILLSTATUS XML documents into bill candidates.
type Parser struct{}

// NewParser creates a new Parser
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts a bill candidate from a BILLSTATUS document. The summary and
// subject terms ride along for relevance filtering and are never stored.
func (p *Parser) Parse(content []byte) (*model.BillCandidate, error) {
	var doc billStatusXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse bill status: %w", err)
	}

	bill := doc.Bill

	billType := strings.ToUpper(strings.TrimSpace(bill.BillType))
	if billType == "" {
		return nil, fmt.Errorf("bill status missing bill type")
	}

	number, err := strconv.Atoi(strings.TrimSpace(bill.BillNumber))
	if err != nil {
		return nil, fmt.Errorf("invalid bill number %q: %w", bill.BillNumber, err)
	}

	congress, err := strconv.Atoi(strings.TrimSpace(bill.Congress))
	if err != nil {
		return nil, fmt.Errorf("invalid congress %q: %w", bill.Congress, err)
	}

	title := strings.TrimSpace(bill.Title)
	if title == "" && len(bill.Titles) > 0 {
		title = strings.TrimSpace(bill.Titles[0])
	}

	introduced, err := time.Parse("2006-01-02", bill.IntroducedDate)
	if err != nil {
		return nil, fmt.Errorf("invalid introduced date %q: %w", bill.IntroducedDate, err)
	}

	fullURL, err := CongressURL(congress, billType, number)
	if err != nil {
		return nil, err
	}

	candidate := &model.BillCandidate{
		Type:       billType,
		Number:     number,
		Title:      title,
		FullURL:    fullURL,
		Introduced: introduced,
	}

	if len(bill.Sponsors) > 0 {
		candidate.Sponsor = strings.TrimSpace(bill.Sponsors[0].FullName)
	}

	if updated, ok := parseUpdateDate(bill.UpdateDate); ok {
		candidate.Updated.Time = updated
		candidate.Updated.Valid = true
	}

	// The feed appends a new summary for each chamber action; the last entry
	// is the current one.
	for i := len(bill.Summaries) - 1; i >= 0; i-- {
		if text := strings.TrimSpace(bill.Summaries[i].Text); text != "" {
			candidate.Summary = text
			break
		}
	}

	for _, subject := range bill.Subjects {
		if subject = strings.TrimSpace(subject); subject != "" {
			candidate.Subjects = append(candidate.Subjects, subject)
		}
	}
	if name := strings.TrimSpace(bill.PolicyArea.Name); name != "" {
		candidate.Subjects = append(candidate.Subjects, name)
	}

	return candidate, nil
}

// parseUpdateDate handles both the timestamp and date-only forms the feed
// emits, truncating to the day. A missing or malformed value is not an error.
func parseUpdateDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		parsed, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, false
		}
	}

	year, month, day := parsed.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
}

// CongressURL builds the public congress.gov page for a bill, like
// https://www.congress.gov/bill/115th-congress/senate-bill/770.
func CongressURL(congress int, billType string, number int) (string, error) {
	path, ok := billTypePaths[billType]
	if !ok {
		return "", fmt.Errorf("unknown bill type %q", billType)
	}

	return fmt.Sprintf("%s/%d%s-congress/%s/%d",
		congressURLBase, congress, ordinalSuffix(congress), path, number), nil
}

func ordinalSuffix(n int) string {
	if rem := n % 100; rem >= 11 && rem <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

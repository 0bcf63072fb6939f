package service

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Sponsor names arrive as "Sen. Doe, Jane A." or, for members with two last
// names, "Rep. Wasserman Schultz, Debbie". Names are folded to ASCII before
// matching, so accented members still parse.
var (
	sponsorName    = regexp.MustCompile(`^(?P<position>Sen\.|Rep\.) (?P<last>\w+), (?P<first>\w+)`)
	sponsorNameTwo = regexp.MustCompile(`^(?P<position>Sen\.|Rep\.) (?P<last>\w+) (?P<last2>\w+), (?P<first>\w+)`)
)

// SponsorName is a parsed sponsor. Handle is empty when the sponsor has no
// entry in the handle table.
type SponsorName struct {
	Handle   string
	Position string
	LastName string
}

// HandleResolver parses sponsor names and looks up their feed handles. The
// table is keyed "Last, First".
type HandleResolver struct {
	handles map[string]string
}

// NewHandleResolver creates a resolver over the given handle table. Keys are
// folded the same way sponsor names are, so "Menéndez, Robert" and
// "Menendez, Robert" address the same entry.
func NewHandleResolver(handles map[string]string) *HandleResolver {
	folded := make(map[string]string, len(handles))
	for name, handle := range handles {
		folded[foldDiacritics(name)] = handle
	}
	return &HandleResolver{handles: folded}
}

// LoadHandleTable reads a YAML handle table mapping "Last, First" to a
// feed handle.
func LoadHandleTable(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("handles: read %s: %w", path, err)
	}

	var table map[string]string
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("handles: parse %s: %w", path, err)
	}

	return table, nil
}

// Resolve parses a sponsor's full name and looks up the feed handle. It
// reports false when the name does not match any known sponsor form.
func (r *HandleResolver) Resolve(fullName string) (*SponsorName, bool) {
	name := foldDiacritics(strings.TrimSpace(fullName))

	position, last, first, ok := parseSponsor(name)
	if !ok {
		return nil, false
	}

	return &SponsorName{
		Handle:   r.handles[last+", "+first],
		Position: position,
		LastName: last,
	}, true
}

func parseSponsor(name string) (position, last, first string, ok bool) {
	if m := sponsorName.FindStringSubmatch(name); m != nil {
		return m[1], m[2], m[3], true
	}
	if m := sponsorNameTwo.FindStringSubmatch(name); m != nil {
		return m[1], m[2] + " " + m[3], m[4], true
	}
	return "", "", "", false
}

// foldDiacritics strips combining marks, mapping "Menéndez" to "Menendez".
func foldDiacritics(s string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(fold, s)
	if err != nil {
		return s
	}
	return out
}

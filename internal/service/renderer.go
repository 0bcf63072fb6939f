package service

import (
	"fmt"
	"unicode/utf8"

	"github.com/mbeaver502/CyberLawBot/internal/model"
)

// StatusBuilder renders a bill into a feed status of the form
//
//	Bill <type>. <number>: "<title>" (<attribution>, <date>) | <short url>
//
// The title is the only elastic part: it is truncated with an ellipsis to
// keep the status within the length bound, and omitted entirely when even
// the fixed parts leave no room.
type StatusBuilder struct {
	maxLength int
	label     string
	resolver  *HandleResolver
}

// NewStatusBuilder creates a new StatusBuilder
func NewStatusBuilder(maxLength int, label string, resolver *HandleResolver) *StatusBuilder {
	return &StatusBuilder{
		maxLength: maxLength,
		label:     label,
		resolver:  resolver,
	}
}

// Build renders the status text for a bill. It returns "" for a bill that
// cannot be rendered, which is only a nil record or one without a short
// link; a sponsor nobody could parse still renders, just unattributed.
func (b *StatusBuilder) Build(bill *model.BillRecord) string {
	if bill == nil || !bill.Shortened() {
		return ""
	}

	start := fmt.Sprintf("%s %s. %d: ", b.label, bill.Type, bill.Number)

	end := ""
	intro := bill.Introduced.Format("2006-01-02")
	if attribution := b.attribution(bill.Sponsor); attribution != "" {
		end = fmt.Sprintf(" (%s, %s) ", attribution, intro)
	} else {
		end = fmt.Sprintf(" (%s) ", intro)
	}
	end += "| " + bill.ShortURL.String

	title := ""
	fixed := utf8.RuneCountInString(start) + utf8.RuneCountInString(end)
	if fixed < b.maxLength {
		// Two slots are reserved for the quotation marks around the title,
		// three more for the ellipsis when it has to be cut.
		budget := b.maxLength - fixed - 2
		titleRunes := []rune(bill.Title)
		switch {
		case len(titleRunes) <= budget:
			title = `"` + bill.Title + `"`
		case budget >= 3:
			title = `"` + string(titleRunes[:budget-3]) + `..."`
		}
	}

	return start + title + end
}

// attribution names the sponsor as compactly as possible: their feed handle
// when we know it, "Sen. Doe" when we can at least parse the name, the bare
// last name when the position is missing, nothing otherwise.
func (b *StatusBuilder) attribution(sponsor string) string {
	name, ok := b.resolver.Resolve(sponsor)
	if !ok {
		return ""
	}

	switch {
	case name.Handle != "":
		return name.Handle
	case name.Position != "":
		return name.Position + " " + name.LastName
	default:
		return name.LastName
	}
}

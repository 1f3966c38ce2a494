package engine

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	domain "github.com/donaldgifford/deal-notifier/pkg/types"
)

// DefaultLabel names the reported identifiers in messages.
const DefaultLabel = "deal IDs"

// FormatMessage builds the report for newIDs. previouslySent is the size of
// the sent set before this run and lastBatchCount the size of the previous
// report; the follow-up phrasing is used whenever something was sent before.
func FormatMessage(label string, newIDs []domain.DealID, previouslySent, lastBatchCount int) string {
	label = labelOrDefault(label)

	var b strings.Builder
	if previouslySent > 0 {
		verb, noun := "are", "ones"
		if len(newIDs) == 1 {
			verb, noun = "is", "one"
		}
		fmt.Fprintf(&b, "In addition to the %d %s reported previously, here %s %d new %s:\n",
			lastBatchCount, label, verb, len(newIDs), noun)
	} else {
		fmt.Fprintf(&b, "%s found:\n", capitalize(label))
	}
	b.WriteString(JoinIDs(newIDs))
	return b.String()
}

// NothingNewMessage is the notice sent when a run finds no new IDs.
func NothingNewMessage(label string) string {
	return fmt.Sprintf("No new %s found.", labelOrDefault(label))
}

// JoinIDs renders ids as a comma-separated list.
func JoinIDs(ids []domain.DealID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}

func labelOrDefault(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return DefaultLabel
	}
	return label
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

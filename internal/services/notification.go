package services

import (
	"fmt"
	"strings"
	"time"

	"conferencepass/internal/domain"
)

const scheduleLayout = "Mon, 02 Jan 2006 15:04"

// Compose builds the plain-text confirmation summary for an account's
// confirmed enrollments. It is a pure data-to-text transformation: no lookups,
// no side effects, deterministic given its inputs and generatedAt. Items are
// expected in activity start order, as returned by ListForUser.
func Compose(accountName string, items []*domain.EnrollmentWithActivity, generatedAt time.Time) string {
	var b strings.Builder

	if len(items) == 1 {
		fmt.Fprintf(&b, "%s, you are registered for 1 activity:\n\n", accountName)
	} else {
		fmt.Fprintf(&b, "%s, you are registered for %d activities:\n\n", accountName, len(items))
	}

	for _, it := range items {
		a := it.Activity
		fmt.Fprintf(&b, "- %s (%s)\n", a.Title, a.Type)
		fmt.Fprintf(&b, "  %s to %s\n", a.StartTime.Format(scheduleLayout), a.EndTime.Format(scheduleLayout))
		fmt.Fprintf(&b, "  Location: %s\n", a.Location)
		fmt.Fprintf(&b, "  Check-in code: %s\n", it.Token.TokenID)
	}

	if len(items) > 1 {
		next := items[0]
		for _, it := range items[1:] {
			if it.Activity.StartTime.Before(next.Activity.StartTime) {
				next = it
			}
		}
		fmt.Fprintf(&b, "\nYour next activity is %s, starting %s.\n",
			next.Activity.Title, next.Activity.StartTime.Format(scheduleLayout))
	}

	fmt.Fprintf(&b, "\nGenerated at %s.\n", generatedAt.Format(scheduleLayout))
	return b.String()
}

// internal/notification/format.go

package notification

import (
	"fmt"
	"time"
)

// RelativeTime renders how long ago t was, in Italian
func RelativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))

	switch {
	case mins < 1:
		return "Adesso"
	case mins < 60:
		return fmt.Sprintf("%dm fa", mins)
	case hours < 24:
		return fmt.Sprintf("%dh fa", hours)
	case days < 7:
		return fmt.Sprintf("%dg fa", days)
	default:
		return t.Local().Format("2/1/2006")
	}
}

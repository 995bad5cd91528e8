package timezone

import "time"

const DefaultTimezone = "Asia/Manila"

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseDate parses a YYYY-MM-DD date at midnight in the church timezone.
func ParseDate(tz, date string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, date, Location(tz))
}

// ParseDateTime combines a YYYY-MM-DD date and an HH:MM time of day.
func ParseDateTime(tz, date, hm string) (time.Time, error) {
	return time.ParseInLocation(DateTimeLayout, date+" "+hm, Location(tz))
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

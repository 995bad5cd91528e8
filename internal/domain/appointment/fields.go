package appointment

import (
	"regexp"
	"strconv"
)

var (
	fieldKeyPattern = regexp.MustCompile(`field[_-]?(\d+)`)
	digitRunPattern = regexp.MustCompile(`\d+`)
)

// ExtractInputFieldID maps a submitted form key to its input field id:
// "12" -> 12, "field_12" / "field-12" / "field12" -> 12, otherwise the first
// run of digits. ok is false when the key carries no id and must be skipped.
func ExtractInputFieldID(key string) (uint, bool) {
	if id, err := strconv.ParseUint(key, 10, 64); err == nil {
		return uint(id), true
	}

	if m := fieldKeyPattern.FindStringSubmatch(key); m != nil {
		return parseID(m[1])
	}

	if run := digitRunPattern.FindString(key); run != "" {
		return parseID(run)
	}

	return 0, false
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

package lottery

import "strings"

const fieldSeparator = "  "

// ParseWinningNumbers returns the fields of the most recent draw in the text
// feed. Line 0 is a header and line 1 the latest draw, with fields separated
// by exactly two spaces. A feed without a draw line yields an empty slice.
func ParseWinningNumbers(src []byte) []string {
	lines := strings.Split(string(src), "\n")
	if len(lines) < 2 {
		return []string{}
	}
	return strings.Split(strings.TrimSpace(lines[1]), fieldSeparator)
}

package currency

import (
	"fmt"
	"strconv"
	"strings"
)

// Prefix is the display prefix for Guyanese dollars. GYD is displayed with
// zero decimal places, so amounts are plain integers throughout.
const Prefix = "GYD$"

// Format renders n as a GYD display string with thousands separators,
// e.g. 1234 -> "GYD$1,234". Negative amounts keep the sign ahead of the
// digits: -50 -> "GYD$-50".
func Format(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	b.WriteString(Prefix)
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
		if len(digits) > lead {
			b.WriteByte(',')
		}
	}
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

// Parse is the inverse of Format. It accepts the prefixed, comma-separated
// form and round-trips every value Format produces.
func Parse(s string) (int64, error) {
	raw := strings.TrimPrefix(strings.TrimSpace(s), Prefix)
	raw = strings.ReplaceAll(raw, ",", "")
	if raw == "" {
		return 0, fmt.Errorf("parse currency %q: empty amount", s)
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse currency %q: %w", s, err)
	}
	return n, nil
}

package profile

import "strings"

// Sources carries the optional places a customer's contact details may come
// from: the stored profile, a joined customer record, and the raw field on
// the transaction itself. Any of them may be empty.
type Sources struct {
	ProfilePhone  string
	CustomerPhone string
	RawPhone      string

	ProfileName  string
	CustomerName string
}

// Phone resolves the contact phone with a fixed precedence: profile first,
// then the joined customer record, then the raw transaction field. The first
// non-empty value wins; ok is false when every source is empty.
func Phone(s Sources) (string, bool) {
	return firstNonEmpty(s.ProfilePhone, s.CustomerPhone, s.RawPhone)
}

// DisplayName resolves the customer display name, profile before joined
// record.
func DisplayName(s Sources) (string, bool) {
	return firstNonEmpty(s.ProfileName, s.CustomerName)
}

func firstNonEmpty(vals ...string) (string, bool) {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t, true
		}
	}
	return "", false
}

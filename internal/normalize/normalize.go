// Package normalize turns raw user-entered identity fields into canonical
// comparable forms. All functions are pure and total: identical input yields
// identical output, empty input yields empty output, and nothing here ever
// returns an error. Every function is idempotent, so normalizing an
// already-normalized value is a no-op.
package normalize

import (
	"html"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD, drops combining marks, and recomposes, so
// "Nguyễn" and "Nguyen" collapse to the same canonical form.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var tagStripper = bluemonday.StrictPolicy()

// Name canonicalizes a person name: trim, collapse internal whitespace runs
// to one space, lowercase, strip diacritics.
func Name(raw string) string {
	if raw == "" {
		return ""
	}
	collapsed := strings.Join(strings.Fields(raw), " ")
	lowered := strings.ToLower(collapsed)
	result, _, err := transform.String(stripMarks, lowered)
	if err != nil {
		// transform.String only fails on malformed UTF-8; fall back to the
		// lowercased form rather than erroring.
		return lowered
	}
	return result
}

// IDCard canonicalizes a national ID / citizen card number: trim, uppercase,
// keep only [A-Z0-9].
func IDCard(raw string) string {
	if raw == "" {
		return ""
	}
	upper := strings.ToUpper(strings.TrimSpace(raw))
	return strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, upper)
}

// ToE164 parses raw as a phone number using the given default region and
// returns the canonical +<countrycode><number> form. On parse failure it
// degrades to stripping all non-digit characters; it never errors.
func ToE164(raw, defaultRegion string) string {
	if raw == "" {
		return ""
	}
	parsed, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return digitsOnly(raw)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

// Address cleans a free-form address: unescape HTML entities, strip tags,
// collapse whitespace, trim.
func Address(raw string) string {
	if raw == "" {
		return ""
	}
	unescaped := html.UnescapeString(raw)
	stripped := tagStripper.Sanitize(unescaped)
	// The strict policy re-escapes residual entities; undo that so the
	// output is plain text and the function stays idempotent.
	plain := html.UnescapeString(stripped)
	return strings.Join(strings.Fields(plain), " ")
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// =============================================================================
// OPNsense Config Faker - Character Escaping Module
// =============================================================================
//
// This module sanitizes free-text descriptions for use in identifier-like
// XML fields (interface descriptions, RADIUS passwords). The target schema
// rejects spaces, hyphens, slashes and non-ASCII letters in these fields,
// so the transform:
//   - transliterates German umlauts and sharp-s to ASCII (ä→ae, ß→ss, ...)
//   - strips spaces
//   - replaces hyphens and slashes with underscores
//   - entity-escapes the XML metacharacters & < >
//
// The transform is total (every rune maps to something; unmapped runes pass
// through unchanged) and idempotent on its own output.
//
// =============================================================================

package escape

import "strings"

// replacer holds the full substitution table. Order does not matter for
// strings.Replacer; all patterns are single runes.
var replacer = strings.NewReplacer(
	"ä", "ae",
	"ö", "oe",
	"ü", "ue",
	"ß", "ss",
	"Ä", "AE",
	"Ö", "OE",
	"Ü", "UE",
	" ", "",
	"-", "_",
	"/", "_",
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// String sanitizes s for identifier-like XML fields.
//
// PARAMETERS:
//   - s: The raw input string (may contain umlauts, spaces, hyphens, ...).
//
// RETURNS:
//   - The sanitized string. Never fails; unmapped characters pass through.
//
// NOTE:
//   The result is NOT idempotent under a second pass for inputs containing
//   "&" (the entity's own ampersand would be re-escaped), matching the
//   underlying SAX escape behavior of the original tool. For inputs without
//   XML metacharacters the transform is idempotent.
func String(s string) string {
	return replacer.Replace(s)
}

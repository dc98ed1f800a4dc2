package render

import "strings"

// Core PDF font families.
const (
	FontHelvetica = "Helvetica"
	FontTimes     = "Times"
	FontCourier   = "Courier"
)

type fontRule struct {
	match func(family string) bool
	font  string
}

// fontRules is evaluated first-match against the lower-cased family name.
// The last entry always matches.
var fontRules = []fontRule{
	{
		match: func(f string) bool {
			return (strings.Contains(f, "times") || strings.Contains(f, "serif")) && !strings.Contains(f, "sans")
		},
		font: FontTimes,
	},
	{
		match: func(f string) bool {
			return strings.Contains(f, "courier") || strings.Contains(f, "mono")
		},
		font: FontCourier,
	},
	{
		match: func(string) bool { return true },
		font:  FontHelvetica,
	},
}

// ResolveFont maps a declared family name to a core font.
func ResolveFont(family string) string {
	f := strings.ToLower(family)
	for _, r := range fontRules {
		if r.match(f) {
			return r.font
		}
	}
	return FontHelvetica
}

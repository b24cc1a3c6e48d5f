package reconcile

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Key is the comparable form of a material name and category.
type Key struct {
	// Name is the folded base name with unit tokens removed.
	Name string

	// Category is the folded category. It may be empty.
	Category string

	// Units holds canonical unit tokens ("1.4м", "16мм"), sorted and unique.
	Units []string
}

// Empty reports whether the key cannot be matched.
func (k Key) Empty() bool {
	return k.Name == "" && len(k.Units) == 0
}

// StoreName returns the name under which mappings for this key are stored.
// Unit tokens are appended so "ДСП 16мм" and "ДСП 18мм" stay distinct.
func (k Key) StoreName() string {
	if len(k.Units) == 0 {
		return k.Name
	}
	if k.Name == "" {
		return strings.Join(k.Units, " ")
	}
	return k.Name + " " + strings.Join(k.Units, " ")
}

// ID returns a map key that is unique per (store name, category).
func (k Key) ID() string {
	return k.StoreName() + "\x00" + k.Category
}

// Tokens returns the base-name tokens, optionally extended with unit tokens.
func (k Key) Tokens(withUnits bool) []string {
	tokens := strings.Fields(k.Name)
	if withUnits {
		tokens = append(tokens, k.Units...)
	}
	return tokens
}

// unitPattern matches a number followed by a unit. Longer alternatives come
// first because Go regexp alternation is leftmost-first.
var unitPattern = regexp.MustCompile(`(\d+(?:[.,]\d+)?)\s*(мм²|мм2|см²|см2|мм|см|дм|м²|м2|м³|м3|мл|м|кг|гр|г|л|шт|mm²|mm2|cm²|cm2|mm|cm|dm|m²|m2|m³|m3|ml|m|kg|g|l|pcs)`)

var unitAliases = map[string]string{
	"мм²": "мм2",
	"mm2": "мм2",
	"mm²": "мм2",
	"см²": "см2",
	"cm2": "см2",
	"cm²": "см2",
	"mm":  "мм",
	"cm":  "см",
	"dm":  "дм",
	"m":   "м",
	"m2":  "м2",
	"m²":  "м2",
	"м²":  "м2",
	"m3":  "м3",
	"m³":  "м3",
	"м³":  "м3",
	"ml":  "мл",
	"kg":  "кг",
	"g":   "г",
	"гр":  "г",
	"l":   "л",
	"pcs": "шт",
}

var folder = cases.Fold()

// Normalize canonicalizes a free-text material name and category.
// An empty or whitespace-only name yields an empty key.
func Normalize(name, category string) Key {
	text := fold(name)
	units, text := extractUnits(text)
	return Key{
		Name:     collapse(text),
		Category: NormalizeCategory(category),
		Units:    units,
	}
}

// NormalizeCategory folds a category the same way names are folded,
// without unit extraction.
func NormalizeCategory(category string) string {
	return collapse(fold(category))
}

func fold(s string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	return folder.String(norm.NFC.String(s))
}

// extractUnits removes number+unit tokens from s and returns them in canonical form.
func extractUnits(s string) ([]string, string) {
	matches := unitPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return nil, s
	}

	seen := make(map[string]struct{})
	var units []string
	var b strings.Builder
	last := 0

	for _, m := range matches {
		start, end := m[0], m[1]
		// Reject "16 мест" or "2м3х": the unit must not run into a letter or digit.
		if end < len(s) {
			r, _ := utf8.DecodeRuneInString(s[end:])
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				continue
			}
		}
		if start > 0 {
			r, _ := utf8.DecodeLastRuneInString(s[:start])
			if unicode.IsDigit(r) || r == '.' || r == ',' {
				continue
			}
		}

		token := canonicalNumber(s[m[2]:m[3]]) + canonicalUnit(s[m[4]:m[5]])
		if _, ok := seen[token]; !ok {
			seen[token] = struct{}{}
			units = append(units, token)
		}

		b.WriteString(s[last:start])
		b.WriteByte(' ')
		last = end
	}
	b.WriteString(s[last:])

	sort.Strings(units)
	return units, b.String()
}

func canonicalNumber(n string) string {
	n = strings.ReplaceAll(n, ",", ".")
	if strings.Contains(n, ".") {
		n = strings.TrimRight(n, "0")
		n = strings.TrimSuffix(n, ".")
	}
	n = strings.TrimLeft(n, "0")
	if n == "" || strings.HasPrefix(n, ".") {
		n = "0" + n
	}
	return n
}

func canonicalUnit(u string) string {
	if alias, ok := unitAliases[u]; ok {
		return alias
	}
	return u
}

// collapse turns punctuation into spaces, keeps decimal separators between
// digits and squeezes whitespace.
func collapse(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	out := make([]rune, 0, len(runes))
	for i, r := range runes {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			out = append(out, r)
		case (r == '.' || r == ',') && i > 0 && i < len(runes)-1 &&
			unicode.IsDigit(runes[i-1]) && unicode.IsDigit(runes[i+1]):
			out = append(out, '.')
		default:
			out = append(out, ' ')
		}
	}
	return strings.Join(strings.Fields(string(out)), " ")
}

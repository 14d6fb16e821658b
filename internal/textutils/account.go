package textutils

import (
	"regexp"
	"strings"
	"unicode"
)

// nameAccountPatterns are tried in order against a file name. The first
// pattern that matches wins; capture group 1 is the result when present.
var nameAccountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)acc(?:oun)?t[\s_:#-]*(?:no\.?|num(?:ber)?)?[\s_:#-]*[x*]*(\d[\d-]*\d)`),
	regexp.MustCompile(`#\s*(\d[\d-]*\d)`),
	regexp.MustCompile(`(?i)ending[\s_:-]*(?:in[\s_:-]*)?(\d{3,})`),
	regexp.MustCompile(`(?i)last[\s_-]*(?:(?:4|four)[\s_-]*digits?[\s_:-]*)?(\d{3,})`),
	regexp.MustCompile(`(?:^|\D)(\d{4}[\s-]?\d{4}[\s-]?\d{4}[\s-]?\d{4})(?:\D|$)`),
	regexp.MustCompile(`(?i)(?:checking|savings|brokerage)\s*:\s*(\d[\d-]*\d)`),
}

// contentAccountPatterns are tried in order against extracted document text.
// Every match of a pattern is validated before moving to the next pattern.
var contentAccountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:account|acct)\.?[ \t]*(?:number|num|no\.?)?[ \t]*[:#]?[ \t]*(\d[\d \-]*\d)`),
	regexp.MustCompile(`(?i)ending[ \t]+(?:in|with)[ \t]*:?[ \t]*(\d{3,})`),
	regexp.MustCompile(`(?i)(?:x{2,}|\*{2,})[ \t-]*(\d{3,})`),
	regexp.MustCompile(`\b(\d{3,}(?:-\d{3,})+)\b`),
	regexp.MustCompile(`\b(\d{8,16})\b`),
}

var digitRun = regexp.MustCompile(`\d+`)

// ExtractFromName runs the loose file-name cascade and returns the first hit,
// or "" when nothing matches.
func ExtractFromName(name string) string {
	if name == "" {
		return ""
	}
	for _, re := range nameAccountPatterns {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if len(m) > 1 && m[1] != "" {
			return m[1]
		}
		return m[0]
	}
	return ""
}

// ExtractFromContent runs the strict, digits-only cascade over document text.
// The returned value has hyphens and spaces removed.
func ExtractFromContent(text string) string {
	if text == "" {
		return ""
	}
	for _, re := range contentAccountPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			candidate := m[0]
			if len(m) > 1 && m[1] != "" {
				candidate = m[1]
			}
			if cleaned, ok := validAccountNumber(candidate); ok {
				return cleaned
			}
		}
	}
	return ""
}

// validAccountNumber strips separators and rejects values that are not all
// digits, shorter than 3, or a single repeated digit.
func validAccountNumber(candidate string) (string, bool) {
	cleaned := strings.NewReplacer("-", "", " ", "", "\t", "").Replace(candidate)
	if len(cleaned) < 3 {
		return "", false
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	if strings.Count(cleaned, cleaned[:1]) == len(cleaned) {
		return "", false
	}
	return cleaned, true
}

// LastDigits normalizes accountInfo to uppercase alphanumerics and returns its
// trailing n characters, or the whole normalized value if it is shorter.
func LastDigits(accountInfo string, n int) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(accountInfo) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if n <= 0 || len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// AccountDigits returns the digits used to match account-specific folders:
// the trailing five characters of the longest digit run in accountInfo, or
// the trailing four when that run is shorter than five. Ties go to the last run.
func AccountDigits(accountInfo string) string {
	longest := ""
	for _, run := range digitRun.FindAllString(accountInfo, -1) {
		if len(run) >= len(longest) {
			longest = run
		}
	}
	if len(longest) >= 5 {
		return longest[len(longest)-5:]
	}
	return LastDigits(longest, 4)
}

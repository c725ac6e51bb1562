package extract

import (
	"regexp"
	"strings"

	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/textnorm"
)

const minPhoneDigits = 7

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d \t().\-/]*\d`)

	// dateRes match digit runs that read as calendar dates or year ranges.
	dateRes = []*regexp.Regexp{
		regexp.MustCompile(`^\d{1,2}[./-]\d{1,2}[./-](\d{2}|\d{4})$`),
		regexp.MustCompile(`^\d{4}[./-]\d{1,2}[./-]\d{1,2}$`),
		regexp.MustCompile(`^(19|20)\d{2}\s*[-/]\s*(19|20)\d{2}$`),
	}

	// inlineLabelRe finds contact labels anywhere in a reference line.
	inlineLabelRe  = regexp.MustCompile(`(?i)\b(e-?mail|e-?posta|phone|tel|telefon|mobile|gsm|cep)\s*:`)
	emptyBracketRe = regexp.MustCompile(`\(\s*\)|\[\s*\]`)
	repeatSepRe    = regexp.MustCompile(`\s*[,|]\s*([,|]\s*)+`)

	// contactLabels are folded label prefixes removed before reading a name.
	contactLabels = []string{
		"e-mail", "email", "e-posta", "eposta", "mail",
		"phone", "tel", "telefon", "mobile", "gsm", "cep",
		"name", "isim", "ad soyad", "adi soyadi", "ad",
	}
)

// FindEmail returns the first email address in text.
func FindEmail(text string) (string, bool) {
	m := emailRe.FindString(text)
	return m, m != ""
}

// FindPhone returns the first run of digits and separators holding at least
// seven digits that is not a date or a year range.
func FindPhone(text string) (string, bool) {
	for _, m := range phoneRe.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		if countDigits(m) >= minPhoneDigits && !isDate(m) {
			return m, true
		}
	}
	return "", false
}

func isDate(s string) bool {
	for _, re := range dateRes {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// References parses referee entries separated by blank lines, bullets or
// semicolons. Name, email and phone are independent and each may be absent.
func References(body string) cv.RecordList {
	body = strings.TrimSpace(body)
	if body == "" {
		return cv.RecordList{}
	}

	records := make([]cv.Record, 0)
	for _, lines := range splitEntries(body, ";") {
		entry := strings.Join(lines, "\n")
		attrs := make(map[cv.Attribute]string, 3)

		email, hasEmail := FindEmail(entry)
		if hasEmail {
			attrs[cv.AttrEmail] = email
		}
		phone, hasPhone := FindPhone(entry)
		if hasPhone {
			attrs[cv.AttrPhone] = phone
		}

		name := lines[0]
		if hasEmail {
			name = strings.ReplaceAll(name, email, "")
		}
		if hasPhone {
			name = strings.ReplaceAll(name, phone, "")
		}
		attrs[cv.AttrName] = cleanName(name)

		if r := cv.NewRecord(attrs); !r.IsEmpty() {
			records = append(records, r)
		}
	}

	if len(records) == 0 {
		records = append(records, cv.NewRecord(map[cv.Attribute]string{cv.AttrRaw: body}))
	}

	return cv.NewRecordList(records...)
}

// cleanName drops contact labels, brackets emptied by value removal and
// dangling separators.
func cleanName(s string) string {
	s = inlineLabelRe.ReplaceAllString(s, "")
	s = emptyBracketRe.ReplaceAllString(s, "")
	s = repeatSepRe.ReplaceAllString(s, ", ")
	s = strings.Join(strings.Fields(s), " ")
	s = stripLabel(s)
	return strings.Trim(s, " \t|,:-–")
}

// stripLabel removes a "Label:" prefix when the label is a known contact label.
func stripLabel(s string) string {
	idx := strings.IndexAny(s, ":")
	if idx < 0 {
		return s
	}

	label := textnorm.Fold(s[:idx])
	for _, known := range contactLabels {
		if label == known {
			return strings.TrimSpace(s[idx+1:])
		}
	}
	return s
}

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/textnorm"
)

const (
	minItemRunes  = 3
	maxItemSpaces = 4
)

// Skills splits a skills or personal traits body into a normalized set.
// Items shorter than three characters or with more than four inner spaces are dropped.
func Skills(body string) cv.StringSet {
	items := make([]string, 0)
	for _, raw := range splitItems(body) {
		item, _ := stripMarker(raw)
		item = textnorm.CollapseSpaces(item)
		if utf8.RuneCountInString(item) < minItemRunes {
			continue
		}
		if strings.Count(item, " ") > maxItemSpaces {
			continue
		}
		items = append(items, item)
	}
	return cv.NewStringSet(items...)
}

// levelKeywords are folded proficiency keywords. Multi-word keywords are
// matched before their single-word prefixes.
var levelKeywords = [][]string{
	{"mother", "tongue"},
	{"native", "speaker"},
	{"upper", "intermediate"},
	{"pre", "intermediate"},
	{"lower", "intermediate"},
	{"ileri", "seviye"},
	{"orta", "seviye"},
	{"temel", "seviye"},
	{"baslangic", "seviye"},
	{"ana", "dil"},
	{"cok", "iyi"},
	{"native"},
	{"bilingual"},
	{"fluent"},
	{"proficient"},
	{"advanced"},
	{"intermediate"},
	{"elementary"},
	{"basic"},
	{"beginner"},
	{"good"},
	{"anadil"},
	{"akici"},
	{"ileri"},
	{"orta"},
	{"iyi"},
	{"temel"},
	{"baslangic"},
	{"a1"}, {"a2"}, {"b1"}, {"b2"}, {"c1"}, {"c2"},
}

// Languages parses one language per phrase. A phrase holding a proficiency
// keyword yields the keyword as level and the remaining words as name; any other
// phrase is kept whole as the name.
func Languages(body string) cv.LanguageList {
	items := make([]cv.Language, 0)
	for _, raw := range splitItems(body) {
		phrase, _ := stripMarker(raw)
		phrase = textnorm.CollapseSpaces(phrase)
		if phrase == "" {
			continue
		}
		items = append(items, parseLanguage(phrase))
	}
	return cv.NewLanguageList(items...)
}

func parseLanguage(phrase string) cv.Language {
	words := strings.FieldsFunc(phrase, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	folded := make([]string, len(words))
	for i, w := range words {
		folded[i] = textnorm.Fold(w)
	}

	for _, keyword := range levelKeywords {
		start, ok := indexWords(folded, keyword)
		if !ok {
			continue
		}
		end := start + len(keyword)
		name := strings.Join(append(append([]string{}, words[:start]...), words[end:]...), " ")
		if name == "" {
			break
		}
		return cv.Language{Name: name, Level: strings.Join(words[start:end], " ")}
	}

	return cv.Language{Name: phrase}
}

func indexWords(words, seq []string) (int, bool) {
	for i := 0; i+len(seq) <= len(words); i++ {
		match := true
		for j := range seq {
			if words[i+j] != seq[j] {
				match = false
				break
			}
		}
		if match {
			return i, true
		}
	}
	return 0, false
}

// Summary returns the trimmed body.
func Summary(body string) cv.FreeText {
	return cv.FreeText(strings.TrimSpace(body))
}

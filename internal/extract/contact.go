package extract

import (
	"strings"
	"unicode"

	"github.com/spigell/cv-compare/internal/cv"
	"github.com/spigell/cv-compare/internal/textnorm"
)

// nameLabels are matched against the folded line with every space removed.
var nameLabels = []string{"name:", "isim:", "adsoyad:", "adisoyadi:", "ad:"}

// Contact finds the candidate's name, email and phone in the GENERAL and
// CONTACT sections. A labelled name wins over the first name-like line.
func Contact(sections cv.SectionMap) cv.Contact {
	var blocks []string
	for _, s := range []cv.Section{cv.SectionGeneral, cv.SectionContact} {
		if body, ok := sections.Get(s); ok {
			blocks = append(blocks, body)
		}
	}
	text := strings.Join(blocks, "\n")

	var c cv.Contact
	c.Email, _ = FindEmail(text)
	c.Phone, _ = FindPhone(text)
	c.Name = labelledName(text)
	if c.Name == "" {
		if general, ok := sections.Get(cv.SectionGeneral); ok {
			c.Name = nameLikeLine(general)
		}
	}
	return c
}

func labelledName(text string) string {
	for _, line := range strings.Split(text, "\n") {
		compact := strings.ReplaceAll(textnorm.Fold(line), " ", "")
		for _, label := range nameLabels {
			if !strings.HasPrefix(compact, label) {
				continue
			}
			idx := strings.Index(line, ":")
			if idx < 0 {
				continue
			}
			if name := strings.TrimSpace(line[idx+1:]); name != "" {
				return name
			}
		}
	}
	return ""
}

// nameLikeLine returns the first line made of two to four capitalized words.
func nameLikeLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 4 {
			continue
		}
		if isNameLike(words) {
			return strings.Join(words, " ")
		}
	}
	return ""
}

func isNameLike(words []string) bool {
	for _, w := range words {
		first := true
		for _, r := range w {
			if first {
				if !unicode.IsUpper(r) {
					return false
				}
				first = false
				continue
			}
			if !unicode.IsLetter(r) && r != '-' && r != '\'' && r != '.' {
				return false
			}
		}
	}
	return true
}

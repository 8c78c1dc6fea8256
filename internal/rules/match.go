package rules

import (
	"regexp"
	"strings"
)

var (
	// "4.1 Document Loader", "2. Ports", "iv. Adapters"
	numberingPrefix = regexp.MustCompile(`^\s*(?:\d+(?:\.\d+)*\.?|[ivxlc]+\.)\s+`)
	nonWord         = regexp.MustCompile(`[^a-z0-9]+`)
	dtoMention      = regexp.MustCompile(`DTOs?\b|(?i:\bdata[ -]transfer[ -]objects?\b)`)
)

// normalize lowercases, drops numbering and punctuation, and reduces simple
// plurals so "4.1 Primary Ports:" and "primary port" compare equal.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = numberingPrefix.ReplaceAllString(s, "")
	s = nonWord.ReplaceAllString(s, " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = singular(w)
	}
	return strings.Join(words, " ")
}

func singular(w string) string {
	if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
		return w[:len(w)-1]
	}
	return w
}

// headingMatches reports whether term appears as a whole-word run in heading.
func headingMatches(heading, term string) bool {
	t := normalize(term)
	if t == "" {
		return false
	}
	return strings.Contains(" "+normalize(heading)+" ", " "+t+" ")
}

func mentionsDTO(text string) bool {
	return dtoMention.MatchString(text)
}

// plain lowercases text and removes inline code markers for substring tests.
func plain(s string) string {
	s = strings.ReplaceAll(s, "`", "")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// mappingQualifiers may follow "source" or "target" in a mapping header,
// as in "Source DTO" or "Target domain model".
var mappingQualifiers = map[string]bool{
	"dto": true, "type": true, "field": true, "model": true, "entity": true,
	"object": true, "class": true, "domain": true, "value": true, "name": true,
}

// mappingColumn returns the index of the header cell naming role, or -1.
// The cell must start with role and carry only mapping qualifiers after it,
// so "Target env" is not a target column.
func mappingColumn(header []string, role string) int {
	for i, h := range header {
		words := strings.Fields(normalize(h))
		if len(words) == 0 || words[0] != role {
			continue
		}
		ok := true
		for _, w := range words[1:] {
			if !mappingQualifiers[w] {
				ok = false
				break
			}
		}
		if ok {
			return i
		}
	}
	return -1
}

package generator

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spec-kit/ticket-synth/internal/catalog"
)

const (
	wordBankColumn = "bank"
	wordColumn     = "word"
)

// placeholder matches #bank# and #bank.capitalize#.
var placeholder = regexp.MustCompile(`#([A-Za-z0-9_]+)(\.capitalize)?#`)

// interpolate replaces word bank placeholders with random words. Unknown banks
// are left untouched.
func (c *Composer) interpolate(phrase string) (string, error) {
	if !strings.Contains(phrase, "#") {
		return phrase, nil
	}
	words, err := c.wordBanks()
	if err != nil {
		return "", err
	}
	if len(words) == 0 {
		return phrase, nil
	}
	return placeholder.ReplaceAllStringFunc(phrase, func(match string) string {
		parts := placeholder.FindStringSubmatch(match)
		bank := words[strings.ToLower(parts[1])]
		if len(bank) == 0 {
			return match
		}
		word := bank[c.rng.Intn(len(bank))]
		if parts[2] != "" {
			word = capitalize(word)
		}
		return word
	}), nil
}

// wordBanks groups the optional word bank table by bank name, reading it once
// per composer.
func (c *Composer) wordBanks() (map[string][]string, error) {
	if c.words != nil {
		return c.words, nil
	}
	c.words = map[string][]string{}
	t, err := c.tables.Optional(catalog.TableWordBanks)
	if err != nil || t == nil {
		return c.words, err
	}
	bankIdx, wordIdx := t.Column(wordBankColumn), t.Column(wordColumn)
	if bankIdx < 0 {
		bankIdx = 0
	}
	if wordIdx < 0 {
		wordIdx = 1
	}
	for _, row := range t.Rows {
		if bankIdx >= len(row) || wordIdx >= len(row) || row[wordIdx] == "" {
			continue
		}
		bank := strings.ToLower(row[bankIdx])
		c.words[bank] = append(c.words[bank], row[wordIdx])
	}
	return c.words, nil
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

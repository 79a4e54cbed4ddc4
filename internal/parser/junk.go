package parser

import (
	"regexp"
	"strings"
)

// DefaultJunkPhrases are promo phrases that channels glue onto shared links.
func DefaultJunkPhrases() []string {
	return []string{
		// Farsi
		"کانفیگ",
		"کانفیک",
		"رایگان",
		"فیلترشکن",
		"فیلتر شکن",
		"وی پی ان",
		"عضو شوید",
		"عضو کانال",
		"جوین",
		"کانال ما",
		"تلگرام",
		"اشتراک",
		"حمایت",
		"پروکسی",
		// English
		"join",
		"channel",
		"telegram",
		"free config",
		"free vpn",
		"subscribe",
		"t.me/",
	}
}

// JunkTrimmer cuts trailing decorations off a candidate. Each pattern marks
// the earliest offset to truncate at; when it has a capture group the cut
// happens at the group start instead of the match start.
type JunkTrimmer struct {
	patterns []*regexp.Regexp
}

const (
	// decorations: emoji, pictographs and keycaps, optionally mixed with
	// digits, running to the end of the candidate
	decorationPattern = `[\p{So}\p{Sk}\x{FE0F}\x{20E3}\x{200D}][0-9\p{So}\p{Sk}\x{FE0F}\x{20E3}\x{200D}]*$`
	// link bodies are ASCII; the first non-ASCII rune before any fragment
	// starts glued-on text
	bodyTailPattern   = `^[^#]*?([^\x00-\x7F])`
	hashtagPattern    = `#[^#]*(#)`
	pipePattern       = `([|｜¦])`
	mentionPattern    = `#[^@]*(@.*)$`
	whitespacePattern = `(\s)`
	punctPattern      = `([,.;:!?،؛…]+)$`

	// fragmentGuard confines English phrases to the display name: they fire
	// at the start of the fragment or after a non-alphanumeric separator
	// such as '_', '-' or '@', never inside hosts, paths or query values.
	fragmentGuard = `#(?:[^#]*?[^\p{L}\p{N}#])?`
)

// NewJunkTrimmer builds a trimmer from the given spam phrases. Phrases are
// matched case-insensitively; spaces inside a phrase also match '_' and '-'.
func NewJunkTrimmer(phrases []string) *JunkTrimmer {
	var ascii, other []string
	seen := make(map[string]struct{})
	for _, phrase := range phrases {
		phrase = strings.Join(strings.Fields(stripInvisible(phrase)), " ")
		key := strings.ToLower(phrase)
		if phrase == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		if isASCII(phrase) {
			ascii = append(ascii, phraseExpr(phrase))
		} else {
			other = append(other, phraseExpr(phrase))
		}
	}

	t := &JunkTrimmer{}
	t.add(decorationPattern)
	t.add(bodyTailPattern)
	if len(other) > 0 {
		t.add(`(?i)(` + strings.Join(other, "|") + `)`)
	}
	if len(ascii) > 0 {
		t.add(`(?i)` + fragmentGuard + `(` + strings.Join(ascii, "|") + `)`)
	}
	t.add(hashtagPattern)
	t.add(pipePattern)
	t.add(mentionPattern)
	t.add(whitespacePattern)
	t.add(punctPattern)
	return t
}

func (t *JunkTrimmer) add(expr string) {
	t.patterns = append(t.patterns, regexp.MustCompile(expr))
}

func phraseExpr(phrase string) string {
	words := strings.Fields(phrase)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(words, `[\s_\-]*`)
}

// Trim applies every pattern in order and repeats until the candidate stops
// changing. Trimming only ever shortens, so this terminates.
func (t *JunkTrimmer) Trim(candidate string) string {
	for {
		before := candidate
		for _, re := range t.patterns {
			candidate = truncateAt(re, candidate)
		}
		if candidate == before {
			return candidate
		}
	}
}

func truncateAt(re *regexp.Regexp, s string) string {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s
	}
	cut := loc[0]
	if len(loc) >= 4 && loc[2] >= 0 {
		cut = loc[2]
	}
	return s[:cut]
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

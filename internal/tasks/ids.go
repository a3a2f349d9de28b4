package tasks

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// jobIDPrefix brands human-readable job ids: LT-SHIP-REPORT-3F9C.
const jobIDPrefix = "LT"

// maxSlugLen keeps job ids readable for long titles.
const maxSlugLen = 16

// stripMarks removes diacritics after NFD decomposition, so "Résumé"
// slugs to RESUME.
var stripMarks = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NewTaskID returns a globally unique task id.
func NewTaskID() string {
	return uuid.NewString()
}

// NewJobID derives a human-readable job id from a task title. The random
// suffix keeps ids unique even within a batch created in the same
// instant; the slug is cosmetic.
func NewJobID(title string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "TASK"
	}
	suffix := strings.ToUpper(uuid.NewString()[:4])
	return jobIDPrefix + "-" + slug + "-" + suffix
}

// slugify uppercases the title's ASCII-safe skeleton, joining words with
// hyphens and truncating at a word boundary where possible.
func slugify(title string) string {
	flat, _, err := transform.String(stripMarks, title)
	if err != nil {
		flat = title
	}

	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToUpper(flat) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if len(slug) <= maxSlugLen {
		return slug
	}
	if i := strings.LastIndexByte(slug[:maxSlugLen], '-'); i > 0 {
		return slug[:i]
	}
	return slug[:maxSlugLen]
}

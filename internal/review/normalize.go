package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/refinery/internal/models"
)

// QualifierMarkers lists the reissue/version markers stripped from track
// titles before duplicate matching. The set is a product heuristic, not a
// structural one; extend it and call [CompileQualifiers] to apply changes.
var QualifierMarkers = []string{
	"remastered",
	"remaster",
	"reissue",
	"version",
	"edit",
	"mix",
	"remix",
	"mono",
	"stereo",
	"single",
	"live",
	"deluxe",
	"anniversary",
	"radio edit",
	"album version",
}

var (
	dashUnifier      = strings.NewReplacer("–", "-", "—", "-")
	whitespaceRe     = regexp.MustCompile(`\s+`)
	punctuationRe    = regexp.MustCompile(`[^\p{L}\p{N} ]`)
	trailingYearRe   = regexp.MustCompile(`\s*-\s*\d{4}\s*$`)
	parenQualifierRe *regexp.Regexp
	brackQualifierRe *regexp.Regexp
	dashQualifierRe  *regexp.Regexp
)

func init() {
	CompileQualifiers()
}

// CompileQualifiers rebuilds the title-stripping patterns from the current
// [QualifierMarkers] list.
func CompileQualifiers() {
	escaped := make([]string, len(QualifierMarkers))
	for i, marker := range QualifierMarkers {
		escaped[i] = regexp.QuoteMeta(strings.ToLower(marker))
	}
	alt := strings.Join(escaped, "|")

	// "(2009 Remastered Version)", "[Deluxe Edition]", " - 2011 Remaster"
	parenQualifierRe = regexp.MustCompile(fmt.Sprintf(`\s*\([^)]*\b(?:%s)\b[^)]*\)`, alt))
	brackQualifierRe = regexp.MustCompile(fmt.Sprintf(`\s*\[[^\]]*\b(?:%s)\b[^\]]*\]`, alt))
	dashQualifierRe = regexp.MustCompile(fmt.Sprintf(`\s*-\s*(?:\d{4}\s*)?\b(?:%s)\b.*$`, alt))
}

// Key identifies tracks judged to be the same underlying song. Two tracks
// with equal keys belong to the same duplicate group regardless of album,
// year, or duration, since remasters commonly differ in all three.
type Key struct {
	Title  string
	Artist string
}

// KeyFor computes the duplicate-matching key for a track: the normalized
// title paired with the lower-cased primary artist. Featured and additional
// artists are ignored because reissues sometimes drop or reorder them.
func KeyFor(t models.Track) Key {
	return Key{
		Title:  NormalizeTitle(t.Title),
		Artist: NormalizeArtist(t.PrimaryArtist()),
	}
}

// NormalizeTitle reduces a track title to its duplicate-matching form:
// lower-cased, dashes unified, trailing qualifier markers stripped, then
// punctuation removed and whitespace collapsed. The result is stable:
// normalizing an already-normalized title is a no-op.
//
// A title that becomes empty after qualifier stripping falls back to the
// scrubbed lower-cased original so tracks are never grouped on artist alone.
func NormalizeTitle(title string) string {
	base := strings.ToLower(title)
	base = dashUnifier.Replace(base)
	base = whitespaceRe.ReplaceAllString(base, " ")
	base = strings.TrimSpace(base)

	stripped := parenQualifierRe.ReplaceAllString(base, "")
	stripped = brackQualifierRe.ReplaceAllString(stripped, "")
	stripped = dashQualifierRe.ReplaceAllString(stripped, "")
	stripped = trailingYearRe.ReplaceAllString(stripped, "")
	stripped = scrub(stripped)

	if stripped == "" {
		return scrub(base)
	}
	return stripped
}

// NormalizeArtist reduces an artist credit to its matching form.
func NormalizeArtist(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// scrub removes punctuation, collapses whitespace, and trims stray dashes.
func scrub(s string) string {
	s = punctuationRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.Trim(s, " -")
}

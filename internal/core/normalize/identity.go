package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Identity key prefixes, the prefix doubles as the type discriminator
const (
	EventKeyPrefix = "evt:"
	GroupKeyPrefix = "grp:"
)

// pool of fresh transformer chains for key folding
var foldPool = sync.Pool{
	New: func() any {
		// order matters: compatibility decomposition, case fold, strip
		// format chars, then fullwidth to ASCII
		return transform.Chain(
			norm.NFKC,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
		)
	},
}

// FoldKey reduces free text to a stable key fragment
// case-folded, width-folded, whitespace collapsed to single dashes
func FoldKey(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ToValidUTF8(s, "")

	tr := foldPool.Get().(transform.Transformer)
	folded, _, _ := transform.String(tr, s)
	tr.Reset()
	foldPool.Put(tr)

	var b strings.Builder
	b.Grow(len(folded))
	pendingDash := false
	for _, r := range folded {
		if unicode.IsSpace(r) {
			if b.Len() > 0 {
				pendingDash = true
			}
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EventKey derives the identity key for an event
// a stable external id wins, content identity is the fallback so re-ingesting
// the same scraped page maps to the same key
func EventKey(source, externalID, title, startDate string) string {
	if externalID != "" {
		return EventKeyPrefix + FoldKey(source) + ":" + externalID
	}
	return EventKeyPrefix + FoldKey(title) + ":" + startDate
}

// GroupKey derives the identity key for a recurring group
func GroupKey(source, externalID, name string) string {
	if externalID != "" {
		return GroupKeyPrefix + FoldKey(source) + ":" + externalID
	}
	return GroupKeyPrefix + FoldKey(name)
}

// IsGroupKey reports whether id names a group rather than an event
func IsGroupKey(id string) bool {
	return strings.HasPrefix(id, GroupKeyPrefix)
}

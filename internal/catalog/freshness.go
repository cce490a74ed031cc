package catalog

import "github.com/mmcdole/wubba/internal/domain"

// Mark returns the high-water mark of the given episodes.
func Mark(episodes []domain.Episode) domain.FreshnessMark {
	var mark domain.FreshnessMark
	for _, ep := range episodes {
		if !mark.Valid || ep.ID > mark.ID {
			mark = domain.FreshnessMark{ID: ep.ID, Valid: true}
		}
	}
	return mark
}

// Classify decides what a refresh produced. Only the high-water mark is
// compared, so edits to existing episodes are never detected.
func Classify(before, after domain.FreshnessMark, err error) domain.Freshness {
	switch {
	case err != nil:
		return domain.FreshnessFailed
	case !before.Valid || !after.Valid:
		return domain.FreshnessNoNewContent
	case after.ID > before.ID:
		return domain.FreshnessNewContent
	default:
		return domain.FreshnessNoNewContent
	}
}

package usecase

import (
	"context"
	"fmt"
	"time"
)

// BackfillResult summarizes one translation backfill pass.
type BackfillResult struct {
	Scanned    int
	Translated int
	Failed     int
}

// TranslateExisting walks stored articles that predate translation and
// pushes their text fields through the gate, pacing provider calls.
// Rows are flagged done even when the gate was a no-op, so an article
// that is already Korean is not revisited on the next pass.
func (p *Ingestor) TranslateExisting(ctx context.Context, limit int) (BackfillResult, error) {
	var result BackfillResult
	if p.translator == nil {
		return result, nil
	}

	pending, err := p.store.ListUntranslated(ctx, limit)
	if err != nil {
		return result, fmt.Errorf("list untranslated: %w", err)
	}
	result.Scanned = len(pending)

	for i, article := range pending {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(backfillPause):
			}
		}

		updated := p.translateOne(ctx, article)
		updated.Translated = true
		if err := p.store.UpdateTranslation(ctx, updated); err != nil {
			result.Failed++
			p.warn("backfill update failed", "id", article.ID, "error", err)
			continue
		}
		result.Translated++
	}
	return result, nil
}

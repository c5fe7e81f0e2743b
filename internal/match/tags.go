package match

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"fundfinder-engine/internal/config"
	"fundfinder-engine/internal/domain"
)

// loadTags fills each candidate's tags, either with one batched join or
// with one query per candidate fanned out under a concurrency limit. Both
// finish before scoring starts, so the two modes rank identically.
func loadTags[C any](
	ctx context.Context,
	repo Repository,
	cfg config.Matching,
	kind domain.Kind,
	cands []C,
	id func(*C) int64,
	set func(*C, []domain.Tag),
) error {
	if len(cands) == 0 {
		return nil
	}

	if cfg.TagFetch != config.TagFetchPerCandidate {
		byID, err := repo.FetchCandidateTags(ctx, kind)
		if err != nil {
			return fetchErr(fmt.Sprintf("%s tags", kind), err)
		}
		for i := range cands {
			set(&cands[i], byID[id(&cands[i])])
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	limit := cfg.TagFetchConcurrency
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i := range cands {
		c := &cands[i]
		g.Go(func() error {
			tags, err := repo.FetchTagsForCandidate(gctx, kind, id(c))
			if err != nil {
				return fetchErr(fmt.Sprintf("%s %d tags", kind, id(c)), err)
			}
			// each goroutine owns one element
			set(c, tags)
			return nil
		})
	}
	return g.Wait()
}

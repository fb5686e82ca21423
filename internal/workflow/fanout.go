package workflow

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// FetchFunc retrieves one document payload, returning an artifact reference
// for the stored payload (may be empty) or an error.
type FetchFunc func(ctx context.Context, docID string) (artifact string, err error)

// FanOut runs one retrieval per document id with bounded concurrency and
// returns one outcome per input id, in input order. A failed retrieval is
// captured as a failure outcome and never aborts the remaining retrievals;
// the fanout returns only after every id has produced an outcome. Results
// are collected by input index, so ordering holds even when retrievals
// complete out of order (and duplicate ids each keep their own slot).
func FanOut(ctx context.Context, ids []string, concurrency int, fetch FetchFunc) []DocumentOutcome {
	results := make([]DocumentOutcome, len(ids))
	if len(ids) == 0 {
		return results
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	// A plain group, not WithContext: one document's failure must not
	// cancel its siblings.
	var g errgroup.Group
	g.SetLimit(concurrency)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			artifact, err := fetch(ctx, id)
			if err != nil {
				zap.L().Warn("workflow: document retrieval failed",
					zap.String("doc_id", id),
					zap.Error(err),
				)
				results[i] = DocumentOutcome{
					DocumentID: id,
					Status:     StatusFailure,
					Detail:     err.Error(),
				}
				return nil
			}
			results[i] = DocumentOutcome{
				DocumentID: id,
				Status:     StatusSuccess,
				Artifact:   artifact,
			}
			return nil
		})
	}

	_ = g.Wait()
	return results
}

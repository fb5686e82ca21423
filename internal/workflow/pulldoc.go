package workflow

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// PullDocStage fans out over the document id list, fetching every payload
// with bounded concurrency. Individual document failures are isolated into
// their own outcomes; the stage itself succeeds whenever the fanout ran to
// completion, even if some or all documents failed. When artifactDir is
// set, fetched payloads are written there and the path recorded on the
// outcome.
func PullDocStage(client esfuse.Client, concurrency int, artifactDir string) Stage {
	return Stage{
		Name: StagePullDoc,
		Requires: func(st *State) error {
			_, err := st.DocumentIDs()
			return err
		},
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			ids, err := st.DocumentIDs()
			if err != nil {
				return nil, err
			}
			_, _, clientID, err := st.Identifiers()
			if err != nil {
				return nil, err
			}

			if artifactDir != "" {
				if err := os.MkdirAll(artifactDir, 0o755); err != nil {
					return nil, eris.Wrap(err, "pull_doc: create artifact dir")
				}
			}

			outcomes := FanOut(ctx, ids, concurrency, func(ctx context.Context, docID string) (string, error) {
				doc, err := client.GetDocument(ctx, clientID, docID)
				if err != nil {
					return "", err
				}
				if artifactDir == "" {
					return "", nil
				}
				path := filepath.Join(artifactDir, docID+payloadExtension(doc.ContentType))
				if err := os.WriteFile(path, doc.Payload, 0o644); err != nil {
					return "", eris.Wrapf(err, "pull_doc: store payload for doc %s", docID)
				}
				return path, nil
			})

			if err := st.SetDocumentResults(outcomes); err != nil {
				return nil, err
			}

			fetched := 0
			for _, o := range outcomes {
				if o.Status == StatusSuccess {
					fetched++
				}
			}
			return &StageResult{
				Detail: fmt.Sprintf("%d of %d documents fetched", fetched, len(ids)),
			}, nil
		},
	}
}

func payloadExtension(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "application/pdf"):
		return ".pdf"
	case strings.HasPrefix(contentType, "application/json"):
		return ".json"
	default:
		return ".bin"
	}
}

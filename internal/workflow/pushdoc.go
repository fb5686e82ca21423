package workflow

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// PushDocStage creates the loan submission over the full document id set.
// Submission type and auto-lock come from configuration.
func PushDocStage(client esfuse.Client, submissionType string, autoLock bool) Stage {
	return Stage{
		Name: StagePushDoc,
		Requires: func(st *State) error {
			if err := requireIdentifiers(st); err != nil {
				return err
			}
			_, err := st.DocumentIDs()
			return err
		},
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			_, taskID, _, err := st.Identifiers()
			if err != nil {
				return nil, err
			}
			ids, err := st.DocumentIDs()
			if err != nil {
				return nil, err
			}

			result, err := client.CreateSubmission(ctx, esfuse.SubmissionRequest{
				TaskID:         taskID,
				DocumentIDs:    ids,
				SubmissionType: submissionType,
				AutoLock:       autoLock,
			})
			if err != nil {
				return nil, eris.Wrap(err, "push_doc: create submission")
			}

			return &StageResult{
				Detail:  fmt.Sprintf("submission created for %d documents", len(ids)),
				Payload: result.SubmissionID,
			}, nil
		},
	}
}

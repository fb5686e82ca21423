package workflow

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// PushDataStage pushes the mapped field updates to Encompass. An empty
// mapping is a valid no-op success: pull_data may legitimately have found
// nothing mappable, or may have failed, and either way there is nothing to
// push.
func PushDataStage(client esfuse.Client) Stage {
	return Stage{
		Name:     StagePushData,
		Requires: requireIdentifiers,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			updates := st.FieldUpdates()
			if len(updates) == 0 {
				return &StageResult{Detail: "no mapped fields to push"}, nil
			}

			fields := make([]esfuse.FieldUpdate, len(updates))
			for i, u := range updates {
				fields[i] = esfuse.FieldUpdate{FieldID: u.Code, Value: u.Value}
			}

			result, err := client.UpdateFields(ctx, st.LoanGUID(), fields)
			if err != nil {
				return nil, eris.Wrap(err, "push_data: field push")
			}

			return &StageResult{
				Detail: fmt.Sprintf("pushed %d fields", result.FieldsUpdated),
			}, nil
		},
	}
}

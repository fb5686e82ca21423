package workflow

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/FintorAI/LG-RackandStack/internal/model"
)

// ExtractInputStage validates the run input and fixes the identifiers and
// document id list on the state. It is the only halting stage.
func ExtractInputStage(in *model.RunInput) Stage {
	return Stage{
		Name:    StageExtractInput,
		Halting: true,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			if err := in.Validate(); err != nil {
				return nil, eris.Wrap(err, "extract_input")
			}

			ids, err := model.ParseDocumentIDs(in.DocumentIDs)
			if err != nil {
				return nil, eris.Wrap(err, "extract_input")
			}

			if err := st.SetIdentifiers(in.LoanID, in.TaskID, in.ClientID); err != nil {
				return nil, err
			}
			if err := st.SetDocumentIDs(ids); err != nil {
				return nil, err
			}

			return &StageResult{
				Detail: fmt.Sprintf("loan %s, %d documents", in.LoanID, len(ids)),
			}, nil
		},
	}
}

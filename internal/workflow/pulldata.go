package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/FintorAI/LG-RackandStack/internal/model"
	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// PullDataStage looks up the loan, maps the borrower record through the
// field-code table and records the Encompass loan reference. A missing loan
// is reported distinctly from transport errors.
func PullDataStage(client esfuse.Client, table *model.FieldTable) Stage {
	return Stage{
		Name:     StagePullData,
		Requires: requireIdentifiers,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			loanID, _, clientID, err := st.Identifiers()
			if err != nil {
				return nil, err
			}

			loan, err := client.GetLoan(ctx, clientID, loanID)
			if err != nil {
				var nf *esfuse.NotFoundError
				if errors.As(err, &nf) {
					return nil, eris.Wrapf(err, "pull_data: loan %s not found", loanID)
				}
				return nil, eris.Wrap(err, "pull_data: loan lookup")
			}

			updates := MapFields(table, loan.Borrower)
			st.SetLoanGUID(loan.LoanGUID)
			if err := st.SetFieldUpdates(updates); err != nil {
				return nil, err
			}

			return &StageResult{
				Detail:  fmt.Sprintf("mapped %d of %d table attributes", len(updates), table.Len()),
				Payload: loan.LoanGUID,
			}, nil
		},
	}
}

func requireIdentifiers(st *State) error {
	_, _, _, err := st.Identifiers()
	return err
}

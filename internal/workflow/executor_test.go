package workflow

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_SuccessRecordsOutcome(t *testing.T) {
	st := NewState("run-1")
	stage := Stage{
		Name: StagePullData,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			return &StageResult{Detail: "mapped 3 fields", Payload: "guid-123"}, nil
		},
	}

	cont, err := Execute(context.Background(), stage, st)

	require.NoError(t, err)
	assert.True(t, cont)
	outcome, ok := st.StageResult(StagePullData)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "mapped 3 fields", outcome.Detail)
	assert.Equal(t, "guid-123", outcome.Payload)
}

func TestExecute_CollaboratorErrorAbsorbed(t *testing.T) {
	st := NewState("run-1")
	stage := Stage{
		Name: StagePullData,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			return nil, eris.New("esfuse: request failed: timeout")
		},
	}

	cont, err := Execute(context.Background(), stage, st)

	require.NoError(t, err)
	assert.True(t, cont, "non-halting stage failure continues the chain")
	outcome, ok := st.StageResult(StagePullData)
	require.True(t, ok)
	assert.Equal(t, StatusFailure, outcome.Status)
	assert.Contains(t, outcome.Detail, "timeout")
}

func TestExecute_HaltingStageStopsOnFailure(t *testing.T) {
	st := NewState("run-1")
	stage := Stage{
		Name:    StageExtractInput,
		Halting: true,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			return nil, eris.New("missing required fields: loan_id")
		},
	}

	cont, err := Execute(context.Background(), stage, st)

	require.NoError(t, err)
	assert.False(t, cont)
	outcome, ok := st.StageResult(StageExtractInput)
	require.True(t, ok)
	assert.Equal(t, StatusFailure, outcome.Status)
}

func TestExecute_PreconditionFailureIsFatal(t *testing.T) {
	st := NewState("run-1")
	ran := false
	stage := Stage{
		Name: StagePullDoc,
		Requires: func(st *State) error {
			_, err := st.DocumentIDs()
			return err
		},
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			ran = true
			return nil, nil
		},
	}

	cont, err := Execute(context.Background(), stage, st)

	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
	assert.False(t, cont)
	assert.False(t, ran, "operation must not run when preconditions fail")
	_, ok := st.StageResult(StagePullDoc)
	assert.False(t, ok, "no outcome recorded for a construction bug")
}

func TestExecute_StateViolationInsideOperationIsFatal(t *testing.T) {
	st := NewState("run-1")
	require.NoError(t, st.SetDocumentIDs([]string{"953"}))

	stage := Stage{
		Name: StagePullDoc,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			return nil, st.SetDocumentIDs([]string{"954"}) // write-once violation
		},
	}

	_, err := Execute(context.Background(), stage, st)

	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
}

func TestExecute_DuplicateStageIsFatal(t *testing.T) {
	st := NewState("run-1")
	stage := Stage{
		Name: StagePushData,
		Run: func(ctx context.Context, st *State) (*StageResult, error) {
			return nil, nil
		},
	}

	_, err := Execute(context.Background(), stage, st)
	require.NoError(t, err)

	_, err = Execute(context.Background(), stage, st)
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)
}

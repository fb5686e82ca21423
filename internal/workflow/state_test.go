package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FintorAI/LG-RackandStack/internal/model"
)

func TestState_IdentifiersWriteOnce(t *testing.T) {
	st := NewState("run-1")

	_, _, _, err := st.Identifiers()
	var ise *InvalidStateError
	require.ErrorAs(t, err, &ise)

	require.NoError(t, st.SetIdentifiers("25", "347360", "loan_25"))
	loanID, taskID, clientID, err := st.Identifiers()
	require.NoError(t, err)
	assert.Equal(t, "25", loanID)
	assert.Equal(t, "347360", taskID)
	assert.Equal(t, "loan_25", clientID)

	err = st.SetIdentifiers("26", "1", "x")
	assert.ErrorAs(t, err, &ise)
}

func TestState_DocumentIDsWriteOnce(t *testing.T) {
	st := NewState("run-1")

	var ise *InvalidStateError
	_, err := st.DocumentIDs()
	require.ErrorAs(t, err, &ise)

	require.NoError(t, st.SetDocumentIDs([]string{"953", "954"}))
	ids, err := st.DocumentIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"953", "954"}, ids)

	assert.ErrorAs(t, st.SetDocumentIDs([]string{"955"}), &ise)
}

func TestState_EmptyDocumentIDsIsPopulated(t *testing.T) {
	st := NewState("run-1")
	require.NoError(t, st.SetDocumentIDs([]string{}))

	ids, err := st.DocumentIDs()
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestState_RecordStageOnce(t *testing.T) {
	st := NewState("run-1")

	require.NoError(t, st.RecordStage(StagePullData, StageOutcome{Status: StatusSuccess}))

	var ise *InvalidStateError
	err := st.RecordStage(StagePullData, StageOutcome{Status: StatusFailure})
	require.ErrorAs(t, err, &ise)

	outcome, ok := st.StageResult(StagePullData)
	require.True(t, ok)
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, 1, st.StagesAttempted())
}

func TestState_SealBlocksFurtherWrites(t *testing.T) {
	st := NewState("run-1")
	st.Seal()

	var ise *InvalidStateError
	assert.ErrorAs(t, st.RecordStage(StagePushDoc, StageOutcome{Status: StatusSuccess}), &ise)
	assert.ErrorAs(t, st.SetDocumentResults([]DocumentOutcome{}), &ise)
}

func TestState_FieldUpdatesLenientRead(t *testing.T) {
	st := NewState("run-1")

	// pull_data may have failed; push_data reads an empty mapping.
	assert.Empty(t, st.FieldUpdates())

	require.NoError(t, st.SetFieldUpdates([]model.FieldUpdate{{Code: "4000", Value: "Jane"}}))
	assert.Len(t, st.FieldUpdates(), 1)

	var ise *InvalidStateError
	assert.ErrorAs(t, st.SetFieldUpdates(nil), &ise)
}

func TestState_DocumentResultsWriteOnce(t *testing.T) {
	st := NewState("run-1")

	require.NoError(t, st.SetDocumentResults([]DocumentOutcome{
		{DocumentID: "953", Status: StatusSuccess},
	}))

	var ise *InvalidStateError
	assert.ErrorAs(t, st.SetDocumentResults(nil), &ise)
	assert.Len(t, st.DocumentResults(), 1)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FintorAI/LG-RackandStack/internal/model"
)

func TestReadRunInput_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"loan_id":"25"}`), 0o644))

	data, err := readRunInput(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"loan_id":"25"}`, string(data))
}

func TestReadRunInput_MissingFile(t *testing.T) {
	_, err := readRunInput(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "0195c2aa-1111-2222-3333-444455556666",
			Input:     model.RunInput{LoanID: "25"},
			Status:    model.RunStatusComplete,
			Report:    &model.Report{WorkflowStatus: model.WorkflowPartial, SuccessfulDocuments: 1, FailedDocuments: 1},
			CreatedAt: now,
		},
		{
			ID:        "0195c2aa-7777-8888-9999-aaaabbbbcccc",
			Input:     model.RunInput{LoanID: "26"},
			Status:    model.RunStatusRunning,
			CreatedAt: now,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	out := buf.String()
	assert.Contains(t, out, "0195c2aa")
	assert.Contains(t, out, "Partial")
	assert.Contains(t, out, "1/1")
	assert.Contains(t, out, "running")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "0195c2aa", truncateID("0195c2aa-1111-2222"))
	assert.Equal(t, "short", truncateID("short"))
}

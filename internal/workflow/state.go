// Package workflow implements the six-stage loan document pipeline: a
// single mutable state threaded through a fixed stage sequence, with
// per-stage and per-document outcome tracking folded into one completion
// report.
package workflow

import (
	"fmt"

	"github.com/FintorAI/LG-RackandStack/internal/model"
)

// Stage names in execution order.
const (
	StageExtractInput = "extract_input"
	StagePullData     = "pull_data"
	StagePullDoc      = "pull_doc"
	StagePushData     = "push_data"
	StagePushDoc      = "push_doc"
	StageSummary      = "summary"
)

// StageOrder lists the executable stages in their fixed sequence. The
// summary is the terminal aggregation, not an executable stage.
var StageOrder = []string{StageExtractInput, StagePullData, StagePullDoc, StagePushData, StagePushDoc}

// Status is the recorded outcome of one stage or document.
type Status string

// Outcome statuses.
const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// StageOutcome is the recorded result of one stage, written exactly once.
type StageOutcome struct {
	Status  Status `json:"status"`
	Detail  string `json:"detail,omitempty"`
	Payload string `json:"payload,omitempty"`
}

// DocumentOutcome is the recorded result of one document retrieval within
// pull_doc. Artifact references the stored payload when one was written.
type DocumentOutcome struct {
	DocumentID string `json:"document_id"`
	Status     Status `json:"status"`
	Detail     string `json:"detail,omitempty"`
	Artifact   string `json:"artifact,omitempty"`
}

// InvalidStateError signals a broken stage-ordering contract: a stage read
// a field its predecessor never populated, or wrote where writing is no
// longer permitted. It indicates a pipeline construction bug and halts the
// run.
type InvalidStateError struct {
	Stage  string
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Stage == "" {
		return "invalid workflow state: " + e.Reason
	}
	return fmt.Sprintf("invalid workflow state in %s: %s", e.Stage, e.Reason)
}

// State is the mutable record threaded through every stage. It is owned by
// a single Runner for the duration of one run and never accessed by more
// than one stage at a time. Writes are append-only or write-once; after
// Seal no further outcome mutation is permitted.
type State struct {
	runID    string
	loanID   string
	taskID   string
	clientID string
	idsSet   bool

	loanGUID string

	documentIDs    []string
	documentIDsSet bool

	fieldUpdates    []model.FieldUpdate
	fieldUpdatesSet bool

	stageResults    map[string]StageOutcome
	documentResults []DocumentOutcome
	docResultsSet   bool

	sealed bool
}

// NewState creates the state for one run.
func NewState(runID string) *State {
	return &State{
		runID:        runID,
		stageResults: make(map[string]StageOutcome),
	}
}

// RunID returns the run identifier.
func (s *State) RunID() string { return s.runID }

// SetIdentifiers records the validated run identifiers. They are immutable
// once set.
func (s *State) SetIdentifiers(loanID, taskID, clientID string) error {
	if s.idsSet {
		return &InvalidStateError{Stage: StageExtractInput, Reason: "identifiers already set"}
	}
	s.loanID, s.taskID, s.clientID = loanID, taskID, clientID
	s.idsSet = true
	return nil
}

// Identifiers returns the run identifiers, failing if extract_input has not
// populated them.
func (s *State) Identifiers() (loanID, taskID, clientID string, err error) {
	if !s.idsSet {
		return "", "", "", &InvalidStateError{Reason: "identifiers not set"}
	}
	return s.loanID, s.taskID, s.clientID, nil
}

// SetDocumentIDs fixes the ordered document id list. Write-once.
func (s *State) SetDocumentIDs(ids []string) error {
	if s.documentIDsSet {
		return &InvalidStateError{Stage: StageExtractInput, Reason: "document_ids already set"}
	}
	s.documentIDs = ids
	s.documentIDsSet = true
	return nil
}

// DocumentIDs returns the ordered document ids, failing if extract_input
// has not populated them.
func (s *State) DocumentIDs() ([]string, error) {
	if !s.documentIDsSet {
		return nil, &InvalidStateError{Reason: "document_ids not set"}
	}
	return s.documentIDs, nil
}

// SetLoanGUID records the Encompass loan reference from pull_data.
func (s *State) SetLoanGUID(guid string) { s.loanGUID = guid }

// LoanGUID returns the Encompass loan reference, empty when pull_data has
// not succeeded.
func (s *State) LoanGUID() string { return s.loanGUID }

// SetFieldUpdates records the mapped field updates. Write-once.
func (s *State) SetFieldUpdates(updates []model.FieldUpdate) error {
	if s.fieldUpdatesSet {
		return &InvalidStateError{Stage: StagePullData, Reason: "field_updates already set"}
	}
	s.fieldUpdates = updates
	s.fieldUpdatesSet = true
	return nil
}

// FieldUpdates returns the mapped field updates. A run where pull_data
// failed simply has none; push_data treats that as zero fields to push.
func (s *State) FieldUpdates() []model.FieldUpdate {
	return s.fieldUpdates
}

// RecordStage writes a stage's outcome. Each stage name is written exactly
// once, and never after the state is sealed.
func (s *State) RecordStage(name string, outcome StageOutcome) error {
	if s.sealed {
		return &InvalidStateError{Stage: name, Reason: "state sealed, no further outcomes permitted"}
	}
	if _, exists := s.stageResults[name]; exists {
		return &InvalidStateError{Stage: name, Reason: "stage outcome already recorded"}
	}
	s.stageResults[name] = outcome
	return nil
}

// StageResult returns a stage's recorded outcome, with ok reporting whether
// the stage was attempted.
func (s *State) StageResult(name string) (StageOutcome, bool) {
	o, ok := s.stageResults[name]
	return o, ok
}

// StagesAttempted returns how many stages recorded an outcome, regardless
// of status.
func (s *State) StagesAttempted() int {
	return len(s.stageResults)
}

// SetDocumentResults records the per-document outcomes. Written only by
// pull_doc, exactly once.
func (s *State) SetDocumentResults(results []DocumentOutcome) error {
	if s.sealed {
		return &InvalidStateError{Stage: StagePullDoc, Reason: "state sealed, no further outcomes permitted"}
	}
	if s.docResultsSet {
		return &InvalidStateError{Stage: StagePullDoc, Reason: "document results already recorded"}
	}
	s.documentResults = results
	s.docResultsSet = true
	return nil
}

// DocumentResults returns the ordered per-document outcomes; empty when
// pull_doc never ran.
func (s *State) DocumentResults() []DocumentOutcome {
	return s.documentResults
}

// Seal freezes the recorded outcomes before aggregation.
func (s *State) Seal() { s.sealed = true }

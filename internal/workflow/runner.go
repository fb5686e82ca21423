package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/FintorAI/LG-RackandStack/internal/model"
	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// RunState is the runner's position in the fixed stage sequence.
type RunState string

// Runner states, in transition order.
const (
	RunStateNotStarted      RunState = "NotStarted"
	RunStateExtractingInput RunState = "ExtractingInput"
	RunStatePullingData     RunState = "PullingData"
	RunStatePullingDocs     RunState = "PullingDocs"
	RunStatePushingData     RunState = "PushingData"
	RunStatePushingDocs     RunState = "PushingDocs"
	RunStateSummarizing     RunState = "Summarizing"
	RunStateDone            RunState = "Done"
)

// Options configures one Runner.
type Options struct {
	// RunID identifies the run; a UUID is generated when empty.
	RunID string
	// DocConcurrency bounds the pull_doc fanout. Defaults to 4.
	DocConcurrency int
	// ArtifactDir, when set, receives fetched document payloads.
	ArtifactDir string
	// SubmissionType for push_doc. Defaults to "Initial Submission".
	SubmissionType string
	// AutoLock flag for push_doc.
	AutoLock bool
	// Now is injectable for testing. Defaults to time.Now.
	Now func() time.Time
}

// Runner drives one workflow invocation through the fixed stage sequence.
// It owns the WorkflowState for the run's duration and is single-use.
type Runner struct {
	client esfuse.Client
	table  *model.FieldTable
	opts   Options
	state  RunState
}

// NewRunner creates a single-use runner.
func NewRunner(client esfuse.Client, table *model.FieldTable, opts Options) *Runner {
	if opts.RunID == "" {
		opts.RunID = uuid.New().String()
	}
	if opts.DocConcurrency <= 0 {
		opts.DocConcurrency = 4
	}
	if opts.SubmissionType == "" {
		opts.SubmissionType = "Initial Submission"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		client: client,
		table:  table,
		opts:   opts,
		state:  RunStateNotStarted,
	}
}

// State returns the runner's current position.
func (r *Runner) State() RunState { return r.state }

func (r *Runner) transition(next RunState) {
	zap.L().Debug("workflow: transition",
		zap.String("run_id", r.opts.RunID),
		zap.String("from", string(r.state)),
		zap.String("to", string(next)),
	)
	r.state = next
}

// Run executes the pipeline once and always produces a completion report;
// collaborator failures are absorbed into the report, never returned. The
// only errors returned are a reused runner or an *InvalidStateError, both
// of which indicate construction bugs. An extract_input failure skips
// straight to summarization; every other stage failure still advances the
// chain.
func (r *Runner) Run(ctx context.Context, in *model.RunInput) (*model.Report, error) {
	if r.state != RunStateNotStarted {
		return nil, eris.Errorf("workflow: runner is single-use (state %s)", r.state)
	}

	st := NewState(r.opts.RunID)
	log := zap.L().With(zap.String("run_id", st.RunID()))
	log.Info("workflow: starting run", zap.String("loan_id", in.LoanID))

	steps := []struct {
		state RunState
		stage Stage
	}{
		{RunStateExtractingInput, ExtractInputStage(in)},
		{RunStatePullingData, PullDataStage(r.client, r.table)},
		{RunStatePullingDocs, PullDocStage(r.client, r.opts.DocConcurrency, r.opts.ArtifactDir)},
		{RunStatePushingData, PushDataStage(r.client)},
		{RunStatePushingDocs, PushDocStage(r.client, r.opts.SubmissionType, r.opts.AutoLock)},
	}

	for _, step := range steps {
		r.transition(step.state)
		cont, err := Execute(ctx, step.stage, st)
		if err != nil {
			r.transition(RunStateDone)
			return nil, err
		}
		if !cont {
			break
		}
	}

	r.transition(RunStateSummarizing)
	report := Aggregate(st, r.opts.Now())
	r.transition(RunStateDone)

	log.Info("workflow: run complete",
		zap.String("status", string(report.WorkflowStatus)),
		zap.Int("nodes_completed", report.TotalNodesCompleted),
		zap.Int("documents_processed", report.DocumentsProcessed),
		zap.Int("failed_documents", report.FailedDocuments),
	)
	return report, nil
}

package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// StageResult carries a successful stage's detail and optional payload
// reference into its recorded outcome.
type StageResult struct {
	Detail  string
	Payload string
}

// StageFunc is one stage's operation against the shared state.
type StageFunc func(ctx context.Context, st *State) (*StageResult, error)

// Stage describes one named step of the pipeline.
type Stage struct {
	Name string
	// Halting marks a stage whose failure stops the chain. Only
	// extract_input halts: without validated identifiers no later stage
	// can run meaningfully.
	Halting bool
	// Requires validates that prior stages populated the fields this stage
	// reads. A returned error is an *InvalidStateError and is fatal.
	Requires func(st *State) error
	Run      StageFunc
}

// Execute runs one stage against the state under the uniform stage
// contract: preconditions are checked first (an unmet one is fatal), any
// error from the stage operation is absorbed into a failure outcome,
// exactly one outcome is recorded, and the returned flag says whether the
// pipeline continues to the next stage.
func Execute(ctx context.Context, stage Stage, st *State) (bool, error) {
	log := zap.L().With(zap.String("run_id", st.RunID()), zap.String("stage", stage.Name))

	if stage.Requires != nil {
		if err := stage.Requires(st); err != nil {
			return false, err
		}
	}

	start := time.Now()
	result, err := stage.Run(ctx, st)
	duration := time.Since(start).Milliseconds()

	// A state-contract violation inside the operation is a construction
	// bug, not a collaborator failure.
	var ise *InvalidStateError
	if errors.As(err, &ise) {
		return false, err
	}

	outcome := StageOutcome{Status: StatusSuccess}
	if err != nil {
		outcome = StageOutcome{Status: StatusFailure, Detail: err.Error()}
		log.Error("workflow: stage failed",
			zap.Int64("duration_ms", duration),
			zap.Error(err),
		)
	} else {
		if result != nil {
			outcome.Detail = result.Detail
			outcome.Payload = result.Payload
		}
		log.Info("workflow: stage complete",
			zap.Int64("duration_ms", duration),
			zap.String("detail", outcome.Detail),
		)
	}

	if recErr := st.RecordStage(stage.Name, outcome); recErr != nil {
		return false, recErr
	}

	if stage.Halting && outcome.Status == StatusFailure {
		return false, nil
	}
	return true, nil
}

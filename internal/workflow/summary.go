package workflow

import (
	"time"

	"github.com/FintorAI/LG-RackandStack/internal/model"
)

// Aggregate seals the state and folds all recorded stage and document
// outcomes into the completion report. It is total: an entirely empty
// state (every stage skipped) yields zero counts and a Failed status. A
// stage absent from the results was never attempted and is distinct from a
// recorded failure; both report a false success flag.
func Aggregate(st *State, now time.Time) *model.Report {
	st.Seal()

	report := &model.Report{Timestamp: now}

	attempted := 0
	succeeded := 0
	flag := func(name string) bool {
		outcome, ok := st.StageResult(name)
		if !ok {
			return false
		}
		attempted++
		if outcome.Status == StatusSuccess {
			succeeded++
			return true
		}
		return false
	}

	report.ExtractInputSuccess = flag(StageExtractInput)
	report.PullDataSuccess = flag(StagePullData)
	report.PullDocSuccess = flag(StagePullDoc)
	report.PushDataSuccess = flag(StagePushData)
	report.PushDocSuccess = flag(StagePushDoc)
	report.TotalNodesCompleted = attempted

	for _, doc := range st.DocumentResults() {
		report.DocumentsProcessed++
		if doc.Status == StatusSuccess {
			report.SuccessfulDocuments++
		} else {
			report.FailedDocuments++
		}
	}

	switch {
	case attempted > 0 && succeeded == attempted && report.FailedDocuments == 0:
		report.WorkflowStatus = model.WorkflowSuccess
	case succeeded > 0:
		report.WorkflowStatus = model.WorkflowPartial
	default:
		report.WorkflowStatus = model.WorkflowFailed
	}

	return report
}

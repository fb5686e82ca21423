package model

import "time"

// WorkflowStatus is the overall outcome of a run.
type WorkflowStatus string

// Workflow statuses. Success requires every recorded stage to have
// succeeded and no failed documents; Partial means at least one stage
// succeeded; Failed means none did.
const (
	WorkflowSuccess WorkflowStatus = "Success"
	WorkflowPartial WorkflowStatus = "Partial"
	WorkflowFailed  WorkflowStatus = "Failed"
)

// FieldUpdate is one field-code/value pair destined for Encompass. Order is
// significant and follows the field table.
type FieldUpdate struct {
	Code  string `json:"code"`
	Value string `json:"value"`
}

// Report is the completion summary produced exactly once per run. Every key
// is always present; stages that never ran report false and contribute zero
// to the document counts.
type Report struct {
	WorkflowStatus      WorkflowStatus `json:"workflow_status"`
	TotalNodesCompleted int            `json:"total_nodes_completed"`
	ExtractInputSuccess bool           `json:"extract_input_success"`
	PullDataSuccess     bool           `json:"pull_data_success"`
	PullDocSuccess      bool           `json:"pull_doc_success"`
	PushDataSuccess     bool           `json:"push_data_success"`
	PushDocSuccess      bool           `json:"push_doc_success"`
	DocumentsProcessed  int            `json:"documents_processed"`
	SuccessfulDocuments int            `json:"successful_documents"`
	FailedDocuments     int            `json:"failed_documents"`
	Timestamp           time.Time      `json:"timestamp"`
}

package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// RunInput is the raw invocation payload for one workflow run. DocumentIDs
// arrives as a JSON-encoded string array and is parsed inside the
// extract_input stage, not here.
type RunInput struct {
	LoanID             string `json:"loan_id"`
	TaskID             string `json:"task_id"`
	ClientID           string `json:"client_id"`
	DocumentIDs        string `json:"document_ids"`
	DocumentsStored    string `json:"documents_stored,omitempty"`
	DocumentsProcessed string `json:"documents_processed,omitempty"`
}

// ValidationError indicates a run input body that could not be decoded at
// all. It is the only error that aborts a run before any stage executes.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid run input: " + e.Reason
}

// ParseRunInput decodes a run input JSON body. An undecodable body yields a
// *ValidationError; missing or malformed fields inside a well-formed body
// are left for the extract_input stage to report.
func ParseRunInput(data []byte) (*RunInput, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, &ValidationError{Reason: "empty body"}
	}
	var in RunInput
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}
	return &in, nil
}

// ParseDocumentIDs parses the JSON-encoded document_ids string into an
// ordered id list. Numeric ids are stringified; anything else is rejected.
func ParseDocumentIDs(raw string) ([]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var elems []any
	if err := dec.Decode(&elems); err != nil {
		return nil, eris.Wrap(err, "model: parse document_ids")
	}

	ids := make([]string, 0, len(elems))
	for i, e := range elems {
		switch v := e.(type) {
		case string:
			ids = append(ids, v)
		case json.Number:
			ids = append(ids, v.String())
		default:
			return nil, eris.Errorf("model: document_ids[%d]: unsupported type %T", i, e)
		}
	}
	return ids, nil
}

// MissingFields returns the names of required identifiers absent from the
// input, in a fixed order for stable error messages.
func (in *RunInput) MissingFields() []string {
	var missing []string
	if in.LoanID == "" {
		missing = append(missing, "loan_id")
	}
	if in.TaskID == "" {
		missing = append(missing, "task_id")
	}
	if in.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if in.DocumentIDs == "" {
		missing = append(missing, "document_ids")
	}
	return missing
}

// Validate reports missing required identifiers as a single error.
func (in *RunInput) Validate() error {
	if missing := in.MissingFields(); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

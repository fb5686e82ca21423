// Package esfuse provides a client for the ESFuse loan and document API.
package esfuse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

// Client defines the ESFuse operations consumed by the workflow.
type Client interface {
	// GetLoan looks up a loan and returns the borrower record plus the
	// Encompass loan reference.
	GetLoan(ctx context.Context, clientID, loanID string) (*Loan, error)
	// GetDocument fetches one document payload. When the API responds with a
	// JSON body carrying a payload URL, the payload is downloaded from it.
	GetDocument(ctx context.Context, clientID, docID string) (*Document, error)
	// UpdateFields pushes field-code/value updates to an Encompass loan.
	UpdateFields(ctx context.Context, loanGUID string, updates []FieldUpdate) (*UpdateResult, error)
	// CreateSubmission creates a loan submission over a document set.
	CreateSubmission(ctx context.Context, req SubmissionRequest) (*SubmissionResult, error)
}

// Loan is the parsed loan lookup response.
type Loan struct {
	LoanGUID string
	Borrower map[string]any
}

// Document is one fetched document payload. Payload bytes are opaque to the
// workflow.
type Document struct {
	DocumentID  string
	ContentType string
	Payload     []byte
}

// FieldUpdate is one field-id/value pair in a field push.
type FieldUpdate struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value"`
}

// UpdateResult reports the outcome of a field push.
type UpdateResult struct {
	FieldsUpdated int      `json:"fields_updated"`
	FieldIDs      []string `json:"field_ids,omitempty"`
}

// SubmissionRequest describes a loan submission to create.
type SubmissionRequest struct {
	TaskID         string   `json:"taskId"`
	DocumentIDs    []string `json:"documentIds"`
	SubmissionType string   `json:"submissionType"`
	AutoLock       bool     `json:"autoLock"`
}

// SubmissionResult is the parsed submission creation response.
type SubmissionResult struct {
	SubmissionID string `json:"submission_id,omitempty"`
	Status       string `json:"status,omitempty"`
}

// NotFoundError indicates the API reported a missing loan or document,
// distinct from transport failures for reporting purposes.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("esfuse: %s %s not found", e.Resource, e.ID)
}

// Option configures the ESFuse client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithRateLimit bounds outgoing requests to respect API rate limits.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *httpClient) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *httpClient) {
		c.http.Timeout = d
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an ESFuse client authenticating with the given bearer
// token.
func NewClient(baseURL, token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do executes one rate-limited request. Calls are single-attempt: failures
// surface to the caller and are absorbed by the workflow's stage contract.
func (c *httpClient) do(ctx context.Context, req *http.Request) ([]byte, string, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, "", 0, eris.Wrap(err, "esfuse: rate limiter")
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", 0, eris.Wrap(err, "esfuse: request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", resp.StatusCode, eris.Wrap(err, "esfuse: read response body")
	}

	return body, resp.Header.Get("Content-Type"), resp.StatusCode, nil
}

// loanResponse mirrors the loan GET wire format.
type loanResponse struct {
	LoanGUID   string `json:"loanGuid"`
	DataObject struct {
		Borrowers []map[string]any `json:"borrowers"`
	} `json:"dataObject"`
}

func (c *httpClient) GetLoan(ctx context.Context, clientID, loanID string) (*Loan, error) {
	reqURL := fmt.Sprintf("%s/loan?clientId=%s&loanId=%s",
		c.baseURL, url.QueryEscape(clientID), url.QueryEscape(loanID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "esfuse: create loan request")
	}

	body, _, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &NotFoundError{Resource: "loan", ID: loanID}
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("esfuse: loan lookup status %d: %s", status, string(body))
	}

	var lr loanResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return nil, eris.Wrap(err, "esfuse: unmarshal loan response")
	}

	loan := &Loan{LoanGUID: lr.LoanGUID}
	if len(lr.DataObject.Borrowers) > 0 {
		loan.Borrower = lr.DataObject.Borrowers[0]
	}
	return loan, nil
}

// docResponse is the JSON form of a document GET. A populated URL points at
// the actual payload bytes.
type docResponse struct {
	URL string `json:"url"`
}

func (c *httpClient) GetDocument(ctx context.Context, clientID, docID string) (*Document, error) {
	reqURL := fmt.Sprintf("%s/doc?clientId=%s&docId=%s",
		c.baseURL, url.QueryEscape(clientID), url.QueryEscape(docID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "esfuse: create doc request")
	}

	body, contentType, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &NotFoundError{Resource: "document", ID: docID}
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("esfuse: doc fetch status %d: %s", status, string(body))
	}

	// A JSON body with a url field is an indirection to the real payload.
	if strings.HasPrefix(contentType, "application/json") {
		var dr docResponse
		if err := json.Unmarshal(body, &dr); err != nil {
			return nil, eris.Wrapf(err, "esfuse: unmarshal doc %s response", docID)
		}
		if dr.URL != "" {
			return c.downloadPayload(ctx, docID, dr.URL)
		}
	}

	return &Document{DocumentID: docID, ContentType: contentType, Payload: body}, nil
}

func (c *httpClient) downloadPayload(ctx context.Context, docID, payloadURL string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, payloadURL, nil)
	if err != nil {
		return nil, eris.Wrapf(err, "esfuse: create payload request for doc %s", docID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "esfuse: download payload for doc %s", docID)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("esfuse: payload download for doc %s: status %d", docID, resp.StatusCode)
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrapf(err, "esfuse: read payload for doc %s", docID)
	}

	return &Document{
		DocumentID:  docID,
		ContentType: resp.Header.Get("Content-Type"),
		Payload:     payload,
	}, nil
}

func (c *httpClient) UpdateFields(ctx context.Context, loanGUID string, updates []FieldUpdate) (*UpdateResult, error) {
	payload := struct {
		LoanGUID string        `json:"loanGuid"`
		Fields   []FieldUpdate `json:"fields"`
	}{LoanGUID: loanGUID, Fields: updates}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, eris.Wrap(err, "esfuse: marshal field updates")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/loan/fields", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "esfuse: create field push request")
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, _, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, &NotFoundError{Resource: "loan", ID: loanGUID}
	}
	if status != http.StatusOK {
		return nil, eris.Errorf("esfuse: field push status %d: %s", status, string(respBody))
	}

	result := &UpdateResult{FieldsUpdated: len(updates)}
	// The response body is informational; a parse failure does not undo a
	// successful push.
	_ = json.Unmarshal(respBody, result)
	return result, nil
}

func (c *httpClient) CreateSubmission(ctx context.Context, sub SubmissionRequest) (*SubmissionResult, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, eris.Wrap(err, "esfuse: marshal submission")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/submission", bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "esfuse: create submission request")
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, _, status, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, eris.Errorf("esfuse: submission status %d: %s", status, string(respBody))
	}

	var result SubmissionResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, eris.Wrap(err, "esfuse: unmarshal submission response")
	}
	return &result, nil
}

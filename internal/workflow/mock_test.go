package workflow

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/FintorAI/LG-RackandStack/pkg/esfuse"
)

// --- ESFuse Mock ---

type mockESFuseClient struct {
	mock.Mock
}

func (m *mockESFuseClient) GetLoan(ctx context.Context, clientID, loanID string) (*esfuse.Loan, error) {
	args := m.Called(ctx, clientID, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*esfuse.Loan), args.Error(1)
}

func (m *mockESFuseClient) GetDocument(ctx context.Context, clientID, docID string) (*esfuse.Document, error) {
	args := m.Called(ctx, clientID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*esfuse.Document), args.Error(1)
}

func (m *mockESFuseClient) UpdateFields(ctx context.Context, loanGUID string, updates []esfuse.FieldUpdate) (*esfuse.UpdateResult, error) {
	args := m.Called(ctx, loanGUID, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*esfuse.UpdateResult), args.Error(1)
}

func (m *mockESFuseClient) CreateSubmission(ctx context.Context, req esfuse.SubmissionRequest) (*esfuse.SubmissionResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*esfuse.SubmissionResult), args.Error(1)
}

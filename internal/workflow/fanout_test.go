package workflow

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOut_PreservesInputOrder(t *testing.T) {
	ids := []string{"953", "954", "955", "956", "957"}

	// Random per-fetch delay forces out-of-order completion.
	results := FanOut(context.Background(), ids, 5, func(ctx context.Context, docID string) (string, error) {
		time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
		return "artifact-" + docID, nil
	})

	require.Len(t, results, len(ids))
	for i, id := range ids {
		assert.Equal(t, id, results[i].DocumentID)
		assert.Equal(t, StatusSuccess, results[i].Status)
		assert.Equal(t, "artifact-"+id, results[i].Artifact)
	}
}

func TestFanOut_RandomizedLengths(t *testing.T) {
	for trial := 0; trial < 20; trial++ {
		n := rand.Intn(30)
		ids := make([]string, n)
		for i := range ids {
			ids[i] = fmt.Sprintf("doc-%d", rand.Intn(10)) // duplicates allowed
		}

		results := FanOut(context.Background(), ids, 4, func(ctx context.Context, docID string) (string, error) {
			return "", nil
		})

		require.Len(t, results, n)
		for i := range ids {
			assert.Equal(t, ids[i], results[i].DocumentID)
		}
	}
}

func TestFanOut_FailureIsolation(t *testing.T) {
	ids := []string{"953", "954", "955"}

	results := FanOut(context.Background(), ids, 2, func(ctx context.Context, docID string) (string, error) {
		if docID == "954" {
			return "", eris.New("esfuse: document 954 not found")
		}
		return "", nil
	})

	require.Len(t, results, 3)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, StatusFailure, results[1].Status)
	assert.Contains(t, results[1].Detail, "954 not found")
	assert.Equal(t, StatusSuccess, results[2].Status)
}

func TestFanOut_AllFail(t *testing.T) {
	ids := []string{"1", "2"}

	results := FanOut(context.Background(), ids, 1, func(ctx context.Context, docID string) (string, error) {
		return "", eris.New("boom")
	})

	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, StatusFailure, r.Status)
	}
}

func TestFanOut_EmptyInput(t *testing.T) {
	results := FanOut(context.Background(), nil, 4, func(ctx context.Context, docID string) (string, error) {
		t.Fatal("fetch must not be called")
		return "", nil
	})
	assert.Empty(t, results)
}

func TestFanOut_ZeroConcurrencyStillCompletes(t *testing.T) {
	results := FanOut(context.Background(), []string{"a", "b"}, 0, func(ctx context.Context, docID string) (string, error) {
		return "", nil
	})
	require.Len(t, results, 2)
}

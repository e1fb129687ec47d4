package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		category Category
	}{
		{"config fault", ErrCodeEmptyCorpus, CategoryConfig},
		{"io error", ErrCodeFileNotFound, CategoryIO},
		{"backend fault", ErrCodeBackendTimeout, CategoryBackend},
		{"validation error", ErrCodeInvalidInput, CategoryValidation},
		{"internal error", ErrCodeConsistency, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, "message", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestNew_DerivesSeverityAndRetryable(t *testing.T) {
	empty := EmptyCorpusError("build received empty chunk list")
	assert.Equal(t, SeverityFatal, empty.Severity)
	assert.False(t, empty.Retryable)

	timeout := TimeoutError("vector store timed out", nil)
	assert.Equal(t, SeverityWarning, timeout.Severity)
	assert.True(t, timeout.Retryable)

	drift := ConsistencyError("chunk_7 missing from registry")
	assert.Equal(t, SeverityFatal, drift.Severity)
	assert.False(t, drift.Retryable)
}

func TestError_FormatsCodeAndMessage(t *testing.T) {
	err := New(ErrCodeEmptyCorpus, "build received empty chunk list", nil)
	assert.Equal(t, "[ERR_103_EMPTY_CORPUS] build received empty chunk list", err.Error())
}

func TestIs_MatchesByCode(t *testing.T) {
	err := fmt.Errorf("search: %w", EmptyCorpusError("no chunks"))

	assert.True(t, stderrors.Is(err, New(ErrCodeEmptyCorpus, "", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeConsistency, "", nil)))
}

func TestUnwrap_ExposesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := BackendError("vector store unreachable", cause)

	assert.True(t, stderrors.Is(err, cause))
}

func TestWrap_NilErrorReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(TimeoutError("slow backend", nil)))
	assert.False(t, IsTransient(ConsistencyError("drift")))
	assert.False(t, IsTransient(stderrors.New("plain error")))
	assert.False(t, IsTransient(nil))
}

func TestIsFatal(t *testing.T) {
	assert.True(t, IsFatal(EmptyCorpusError("no chunks")))
	assert.True(t, IsFatal(ConsistencyError("drift")))
	assert.False(t, IsFatal(TimeoutError("slow backend", nil)))
	assert.False(t, IsFatal(nil))
}

func TestWithDetail_AccumulatesContext(t *testing.T) {
	err := ConsistencyError("dangling chunk id").
		WithDetail("chunk_id", "chunk_42").
		WithDetail("ranker", "semantic")

	require.NotNil(t, err.Details)
	assert.Equal(t, "chunk_42", err.Details["chunk_id"])
	assert.Equal(t, "semantic", err.Details["ranker"])
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, ErrCodeConsistency, GetCode(ConsistencyError("drift")))
	assert.Equal(t, "", GetCode(stderrors.New("plain")))
}

package pgerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: CodeExclusionViolation})

	assert.True(t, IsExclusionViolation(wrapped))
	assert.False(t, IsUniqueViolation(wrapped))
	assert.True(t, IsSerializationFailure(&pq.Error{Code: CodeSerializationFailure}))
	assert.True(t, IsSerializationFailure(&pq.Error{Code: CodeDeadlockDetected}))
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: CodeForeignKeyViolation}))
	assert.Equal(t, "", Code(errors.New("plain")))
}

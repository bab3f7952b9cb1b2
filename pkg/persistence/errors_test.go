package persistence

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreError_WrapsSentinel(t *testing.T) {
	err := NewStoreError("GetByID", "workflow", "wf-1", ErrWorkflowNotFound)

	assert.True(t, errors.Is(err, ErrWorkflowNotFound))
	assert.True(t, IsWorkflowNotFound(err))
	assert.Contains(t, err.Error(), "GetByID")
	assert.Contains(t, err.Error(), "wf-1")
}

func TestStoreError_WithoutID(t *testing.T) {
	err := NewStoreError("GetAll", "workflow", "", errors.New("disk full"))

	assert.False(t, IsWorkflowNotFound(err))
	assert.Contains(t, err.Error(), "GetAll operation failed for workflow")
}

func TestIsTemplateNotFound(t *testing.T) {
	err := NewStoreError("GetByID", "template", "welcome", ErrTemplateNotFound)

	assert.True(t, IsTemplateNotFound(err))
	assert.False(t, IsWorkflowNotFound(err))
}

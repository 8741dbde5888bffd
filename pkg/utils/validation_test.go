package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/haydenbleasel/tersa-sub001/pkg/errors"
)

type sample struct {
	Name string `json:"name" validate:"notblank,max=5"`
	Type string `json:"type" validate:"nodetype"`
	Task string `json:"task" validate:"omitempty,task"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Name: "ok", Type: "text"}))

	err := ValidateStruct(sample{Name: " ", Type: "spreadsheet", Task: "dream"})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	appErr := pkgerrors.GetAppError(err)
	assert.Contains(t, appErr.Details, "name")
	assert.Contains(t, appErr.Details, "type")
	assert.Contains(t, appErr.Details, "task")
	assert.Contains(t, appErr.Message, "name is required")
}

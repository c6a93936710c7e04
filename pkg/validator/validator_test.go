package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type commentPayload struct {
	Body     string `json:"body" validate:"required,notblank,max=4000"`
	Severity string `json:"severity" validate:"omitempty,oneof=info success warning error"`
}

func TestValidateStructSuccess(t *testing.T) {
	require.NoError(t, ValidateStruct(commentPayload{Body: "Scaffold inspected", Severity: "warning"}))
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(commentPayload{Body: "   ", Severity: "panic"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	require.Equal(t, "body", failures[0].Field)
	require.Equal(t, "notblank", failures[0].Tag)
	require.Equal(t, "severity", failures[1].Field)
	require.Equal(t, "oneof", failures[1].Tag)
	require.Contains(t, failures.Error(), "severity failed on oneof=info success warning error")
}

func TestValidateVar(t *testing.T) {
	require.NoError(t, ValidateVar("7b6f8a9e-0d0f-4f52-9d8e-1c2b3a4d5e6f", "uuid4"))
	require.Error(t, ValidateVar("not-a-uuid", "uuid4"))
}

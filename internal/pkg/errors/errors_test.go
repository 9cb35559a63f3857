package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(KindSchemaViolation, "sections is not an array")
	wrapped := fmt.Errorf("chunk 3: %w", base)
	require.Equal(t, KindSchemaViolation, KindOf(wrapped))
	require.Equal(t, KindUnknown, KindOf(stderrors.New("plain")))
	require.Equal(t, KindUnknown, KindOf(nil))
}

func TestWrapUnwraps(t *testing.T) {
	cause := stderrors.New("unexpected EOF")
	err := Wrap(KindInvalidEnvelope, cause, "decode envelope")
	require.ErrorIs(t, err, cause)
	require.Equal(t, "InvalidEnvelope: decode envelope: unexpected EOF", err.Error())
}

func TestMissingFields(t *testing.T) {
	names := []string{"questionFileId", "projectId", "opportunityId", "textFileKey"}
	err := MissingFields(names, map[string]string{
		"projectId":   "p1",
		"textFileKey": "  ",
	})
	require.Error(t, err)
	require.Equal(t, KindMissingFields, KindOf(err))
	require.Equal(t, "MissingFields: missing required fields: questionFileId, opportunityId, textFileKey", err.Error())

	require.NoError(t, MissingFields(names, map[string]string{
		"questionFileId": "q", "projectId": "p", "opportunityId": "o", "textFileKey": "k",
	}))
}

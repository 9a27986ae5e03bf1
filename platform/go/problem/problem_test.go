package problem

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Write(rec, New(http.StatusBadRequest, TypeValidation, "Validation failed", "storeName is required", map[string][]string{
		"storeName": {"is required"},
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, ContentType, rec.Header().Get("Content-Type"))

	var got Details
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "Validation failed", got.Title)
	require.Equal(t, http.StatusBadRequest, got.Status)
	require.Equal(t, []string{"is required"}, got.Errors["storeName"])
}

func TestWrite_omitsEmptyErrors(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	Write(rec, New(http.StatusInternalServerError, TypeInternal, "Internal error", "", nil))
	require.NotContains(t, rec.Body.String(), "errors")
	require.NotContains(t, rec.Body.String(), "detail")
}

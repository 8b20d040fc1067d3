package httperr_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordermanager/oms/internal/errs"
	"github.com/ordermanager/oms/internal/transport/http/httperr"
)

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, httperr.StatusOf(errs.InvalidArgument("bad sku")))
	assert.Equal(t, http.StatusNotFound, httperr.StatusOf(errs.NotFound("order", "x")))
	assert.Equal(t, http.StatusConflict, httperr.StatusOf(errs.ConcurrencyConflict("order", "x")))
	assert.Equal(t, http.StatusUnprocessableEntity, httperr.StatusOf(errs.InvalidOperation("cannot cancel")))
	assert.Equal(t, http.StatusInternalServerError, httperr.StatusOf(assert.AnError))
}

func TestWrite(t *testing.T) {
	t.Run("should render the error body with the mapped status", func(t *testing.T) {
		rec := httptest.NewRecorder()

		httperr.Write(rec, errs.NotFound("order", "abc"))

		assert.Equal(t, http.StatusNotFound, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body["error"], "not found")
	})

	t.Run("should not echo internal errors", func(t *testing.T) {
		rec := httptest.NewRecorder()

		httperr.Write(rec, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "internal server error", body["error"])
	})
}

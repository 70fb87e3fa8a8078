package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)

	JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestData(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		data     any
		wantBody string
	}{
		{
			name:     "task",
			code:     http.StatusCreated,
			data:     map[string]any{"id": "t-1", "isCompleted": false},
			wantBody: `{"data":{"id":"t-1","isCompleted":false}}`,
		},
		{
			name:     "empty list stays a list",
			code:     http.StatusOK,
			data:     []string{},
			wantBody: `{"data":[]}`,
		},
		{
			name:     "deleted",
			code:     http.StatusOK,
			data:     nil,
			wantBody: `{"data":null}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)

			Data(w, r, tt.code, tt.data)

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
	}{
		{"validation", http.StatusBadRequest, "Title is required."},
		{"missing task", http.StatusNotFound, "Task not found."},
		{"internal", http.StatusInternalServerError, "An unexpected error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)

			Error(w, r, tt.code, tt.message)

			assert.Equal(t, tt.code, w.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(w.Body).Decode(&got))
			assert.Equal(t, tt.message, got["error"])
			// клиент различает ответы по наличию data
			assert.NotContains(t, got, "data")
		})
	}
}

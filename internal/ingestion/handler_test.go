package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	v1 "github.com/coyotlinden/opentsdb/internal/api/v1"
	"github.com/coyotlinden/opentsdb/internal/core/series"
	"github.com/coyotlinden/opentsdb/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory DataPointStore for handler tests.
type fakeStore struct {
	saved   []v1.DataPoint
	values  []v1.ParsedValue
	saveErr error
}

func (f *fakeStore) SaveDataPoint(_ context.Context, dp *v1.DataPoint, value v1.ParsedValue) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *dp)
	f.values = append(f.values, value)
	return nil
}

func (f *fakeStore) RetrieveRange(context.Context, string, time.Time, time.Time) ([]series.Point, error) {
	return nil, nil
}

func doPut(t *testing.T, store storage.DataPointStore, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(store, 1)
	r := gin.New()
	svc.RegisterRoutes(r)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/put", bytes.NewBufferString(body))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestPutHandler_Batch(t *testing.T) {
	store := &fakeStore{}
	resp := doPut(t, store, `[
		{"metric": "sys.cpu.user", "timestamp": 1767225600000, "value": 42, "tags": {"host": "web01"}},
		{"metric": "sys.cpu.user", "timestamp": 1767225660000, "value": 1.5}
	]`)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, store.saved, 2)

	require.True(t, store.values[0].Integer)
	require.Equal(t, int64(42), store.values[0].IntValue)
	require.False(t, store.values[1].Integer)
	require.InDelta(t, 1.5, store.values[1].Float, 1e-12)

	var body map[string]int
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 2, body["stored"])
	require.Equal(t, 0, body["duplicates"])
}

func TestPutHandler_SingleObject(t *testing.T) {
	store := &fakeStore{}
	resp := doPut(t, store, `{"metric": "sys.cpu.user", "timestamp": 1767225600000, "value": 7}`)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Len(t, store.saved, 1)
}

func TestPutHandler_StatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		store          *fakeStore
		expectedStatus int
	}{
		{
			name:           "invalid json returns 400",
			body:           `{not json`,
			store:          &fakeStore{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty batch returns 400",
			body:           `[]`,
			store:          &fakeStore{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid datapoint returns 400",
			body:           `[{"metric": "", "timestamp": 1, "value": 1}]`,
			store:          &fakeStore{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "oversized body returns 413",
			body:           `[{"metric": "` + strings.Repeat("x", 2<<20) + `"}]`,
			store:          &fakeStore{},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:           "store failure returns 500",
			body:           `[{"metric": "m", "timestamp": 1, "value": 1}]`,
			store:          &fakeStore{saveErr: fmt.Errorf("db failure")},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp := doPut(t, tc.store, tc.body)
			if resp.Code != tc.expectedStatus {
				t.Logf("unexpected response body: %s", resp.Body.String())
			}
			require.Equal(t, tc.expectedStatus, resp.Code)
		})
	}
}

func TestPutHandler_DuplicatesCounted(t *testing.T) {
	store := &fakeStore{saveErr: storage.ErrDuplicate}
	resp := doPut(t, store, `[{"metric": "m", "timestamp": 1, "value": 1}]`)

	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 0, body["stored"])
	require.Equal(t, 1, body["duplicates"])
}

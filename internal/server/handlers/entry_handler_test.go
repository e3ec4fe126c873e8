package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/domain/models"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/repository/memory"
	"github.com/shymalagowri/CASFOS-DATABASE-sub000/internal/service/entry"
)

func newEntryRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos := memory.New().Repositories()
	handler := NewEntryHandler(entry.NewService(repos, nil, nil), nil)

	r := gin.New()
	r.POST("/api/entries", handler.Create)
	r.GET("/api/entries/:id", handler.Get)
	r.POST("/api/entries/:id/approve", handler.Approve)
	r.POST("/api/entries/:id/reject", handler.Reject)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validEntry() map[string]any {
	return map[string]any{
		"source": "Supplier A",
		"billNo": "B-1",
		"items": []map[string]any{{
			"assetType":        "Permanent",
			"assetCategory":    "Furniture",
			"itemName":         "Chair",
			"itemDescription":  "Steel revolving",
			"quantityReceived": 2,
			"itemIds":          []string{"CH-1", "CH-2"},
		}},
	}
}

func TestEntryLifecycleOverHTTP(t *testing.T) {
	r := newEntryRouter(t)

	w := postJSON(t, r, "/api/entries", validEntry())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created models.PendingEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.False(t, created.ID.IsZero())

	w = postJSON(t, r, "/api/entries/"+created.ID.Hex()+"/approve", nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// approved entries are gone
	req := httptest.NewRequest(http.MethodGet, "/api/entries/"+created.ID.Hex(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntryRejectOverHTTP(t *testing.T) {
	r := newEntryRouter(t)

	w := postJSON(t, r, "/api/entries", validEntry())
	require.Equal(t, http.StatusCreated, w.Code)
	var created models.PendingEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// remarks are mandatory
	w = postJSON(t, r, "/api/entries/"+created.ID.Hex()+"/reject", map[string]any{"remarks": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(t, r, "/api/entries/"+created.ID.Hex()+"/reject", map[string]any{"remarks": "bill mismatch"})
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestEntryValidationOverHTTP(t *testing.T) {
	r := newEntryRouter(t)

	w := postJSON(t, r, "/api/entries", map[string]any{"items": []map[string]any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := validEntry()
	bad["items"].([]map[string]any)[0]["itemIds"] = []string{"CH-1"}
	w = postJSON(t, r, "/api/entries", bad)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/entries/not-an-id/approve", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/services"
	"github.com/AnshRaj112/portfolio-backend/internal/testutil"
)

func newStatsHandler() *SocialStatsHandler {
	svc := services.NewSocialStatsService(newMemStats(), nil, nil, zap.NewNop())
	return NewSocialStatsHandler(svc, zap.NewNop())
}

func fieldsOf(t *testing.T, body map[string]any) []map[string]any {
	t.Helper()
	data, ok := body["data"].(map[string]any)
	require.True(t, ok, "data missing: %v", body)
	raw := data["fields"].([]any)
	out := make([]map[string]any, len(raw))
	for i, f := range raw {
		out[i] = f.(map[string]any)
	}
	return out
}

func addStatField(t *testing.T, h *SocialStatsHandler, name string) string {
	t.Helper()
	rec, body := call(t, h.AddField("Social stats field added successfully"), http.MethodPost, "/api/portfolio/add-social-stats-field",
		map[string]any{"name": name, "value": 10, "unit": "+"})
	require.Equal(t, http.StatusOK, rec.Code, body)
	fields := fieldsOf(t, body)
	return fields[len(fields)-1]["id"].(string)
}

func TestSocialStats_AddCreatesParent(t *testing.T) {
	h := newStatsHandler()

	rec, body := call(t, h.AddField("Professional stat added successfully"), http.MethodPost, "/api/portfolio/add-social-stats",
		map[string]any{"name": "Followers"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Professional stat added successfully", body["message"])

	fields := fieldsOf(t, body)
	require.Len(t, fields, 1)
	assert.Equal(t, float64(0), fields[0]["order"])
	assert.Equal(t, float64(0), fields[0]["value"])
	assert.Equal(t, "experience", fields[0]["category"])
	assert.Equal(t, "static", fields[0]["type"])
	assert.Equal(t, true, fields[0]["enabled"])
}

func TestSocialStats_AddRequiresName(t *testing.T) {
	h := newStatsHandler()
	rec, body := call(t, h.AddField("ok"), http.MethodPost, "/", map[string]any{"value": 3})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["success"])
}

func TestSocialStats_UpdateByParamAndBody(t *testing.T) {
	h := newStatsHandler()
	id := addStatField(t, h, "Repos")

	req := testutil.WithChiURLParams(jsonRequest(t, http.MethodPut, "/api/portfolio/update-social-stats/"+id, map[string]any{"value": 42}), "fieldId", id)
	rec, body := serve(t, h.UpdateFieldByParam, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Professional stat updated successfully", body["message"])
	f := fieldsOf(t, body)[0]
	assert.Equal(t, float64(42), f["value"])
	assert.Equal(t, "Repos", f["name"])
	assert.Equal(t, "+", f["unit"])

	rec, body = call(t, h.UpdateFieldByBody, http.MethodPost, "/api/portfolio/update-social-stats-field",
		map[string]any{"fieldId": id, "name": "Repositories"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Social stats field updated successfully", body["message"])
	f = fieldsOf(t, body)[0]
	assert.Equal(t, "Repositories", f["name"])
	assert.Equal(t, float64(42), f["value"])
}

func TestSocialStats_LegacyIDAlias(t *testing.T) {
	h := newStatsHandler()
	addStatField(t, h, "Stars")

	_, body := call(t, h.Get, http.MethodGet, "/", nil)
	legacy := fieldsOf(t, body)[0]["_id"].(string)

	rec, body := call(t, h.UpdateFieldByBody, http.MethodPost, "/", map[string]any{"fieldId": legacy, "value": "1k"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1k", fieldsOf(t, body)[0]["value"])
}

func TestSocialStats_MissingField(t *testing.T) {
	h := newStatsHandler()

	rec, body := call(t, h.UpdateFieldByBody, http.MethodPost, "/", map[string]any{"fieldId": "nope", "name": "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Social stats not found", body["message"])

	addStatField(t, h, "Stars")
	rec, body = call(t, h.DeleteFieldByBody, http.MethodPost, "/", map[string]any{"fieldId": "nope"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Field not found", body["message"])
}

func TestSocialStats_DeleteByParam(t *testing.T) {
	h := newStatsHandler()
	a := addStatField(t, h, "A")
	addStatField(t, h, "B")

	req := testutil.WithChiURLParams(jsonRequest(t, http.MethodDelete, "/api/portfolio/delete-social-stats/"+a, nil), "fieldId", a)
	rec, body := serve(t, h.DeleteFieldByParam, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Social stats field deleted successfully", body["message"])
	fields := fieldsOf(t, body)
	require.Len(t, fields, 1)
	assert.Equal(t, "B", fields[0]["name"])
}

func TestSocialStats_Reorder(t *testing.T) {
	h := newStatsHandler()
	a := addStatField(t, h, "A")
	b := addStatField(t, h, "B")
	c := addStatField(t, h, "C")

	orders := map[string]any{"fieldOrders": []map[string]any{
		{"fieldId": a, "order": 2},
		{"fieldId": b, "order": 0},
		{"fieldId": c, "order": 1},
	}}
	for i := 0; i < 2; i++ {
		rec, body := call(t, h.Reorder, http.MethodPost, "/api/portfolio/reorder-social-stats-fields", orders)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Social stats fields reordered successfully", body["message"])

		var names []string
		for _, f := range fieldsOf(t, body) {
			names = append(names, f["name"].(string))
		}
		assert.Equal(t, []string{"B", "C", "A"}, names)
	}
}

func TestSocialStats_ReplaceAll(t *testing.T) {
	h := newStatsHandler()

	rec, body := call(t, h.ReplaceAll, http.MethodPost, "/api/portfolio/update-social-stats", map[string]any{
		"fields": []map[string]any{
			{"name": "Years", "value": 5, "order": 1},
			{"name": "Clients", "value": 12, "order": 0},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	fields := fieldsOf(t, body)
	require.Len(t, fields, 2)
	for _, f := range fields {
		assert.NotEmpty(t, f["id"])
	}
}

func TestSocialStats_SyncWithoutDocument(t *testing.T) {
	h := newStatsHandler()
	rec, _ := call(t, h.Sync, http.MethodPost, "/api/portfolio/sync-social-stats", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

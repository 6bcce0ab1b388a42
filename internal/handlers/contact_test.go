package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
	"github.com/AnshRaj112/portfolio-backend/internal/models"
	"github.com/AnshRaj112/portfolio-backend/internal/services"
	"github.com/AnshRaj112/portfolio-backend/internal/testutil"
	"github.com/AnshRaj112/portfolio-backend/pkg/clientip"
	"github.com/AnshRaj112/portfolio-backend/pkg/utils"
)

func newContactFixture() (*ContactHandler, *memContacts, *services.InboxHub) {
	store := &memContacts{}
	hub := services.NewInboxHub(nil, zap.NewNop())
	svc := services.NewContactService(store, nil, hub, zap.NewNop())
	return NewContactHandler(svc, hub, clientip.Resolver{}, []string{"http://localhost:3000"}, zap.NewNop()), store, hub
}

func validSubmission() map[string]any {
	return map[string]any{
		"name":    "  Jane  ",
		"email":   "Jane@Example.com",
		"subject": "Hello",
		"message": "I like your projects.",
	}
}

func TestContactSubmit(t *testing.T) {
	h, store, _ := newContactFixture()

	rec, body := call(t, h.Submit, http.MethodPost, "/api/contact/submit", validSubmission())
	require.Equal(t, http.StatusCreated, rec.Code, body)
	assert.Equal(t, "Thank you for your message! I will get back to you soon.", body["message"])
	data := body["data"].(map[string]any)
	assert.NotEmpty(t, data["id"])
	assert.NotEmpty(t, data["submittedAt"])

	require.Len(t, store.msgs, 1)
	assert.Equal(t, "Jane", store.msgs[0].Name)
	assert.Equal(t, "jane@example.com", store.msgs[0].Email)
	assert.Equal(t, models.ContactStatusNew, store.msgs[0].Status)
	assert.Equal(t, "192.0.2.1", store.msgs[0].IPAddress)
}

func TestContactSubmit_Validation(t *testing.T) {
	h, store, _ := newContactFixture()

	bad := validSubmission()
	bad["email"] = "not-an-email"
	rec, body := call(t, h.Submit, http.MethodPost, "/", bad)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please enter a valid email address", body["message"])

	missing := validSubmission()
	missing["subject"] = "   "
	rec, body = call(t, h.Submit, http.MethodPost, "/", missing)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "All fields are required", body["message"])

	assert.Empty(t, store.msgs)
}

func TestContactSubmit_StoreFailure(t *testing.T) {
	h, store, _ := newContactFixture()
	store.err = apperr.Unavailable(assert.AnError)

	rec, body := call(t, h.Submit, http.MethodPost, "/", validSubmission())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Sorry, there was an error sending your message. Please try again.", body["message"])
	assert.NotEmpty(t, body["error"])
}

func TestContactInboxFlow(t *testing.T) {
	h, store, _ := newContactFixture()
	for i := 0; i < 3; i++ {
		rec, _ := call(t, h.Submit, http.MethodPost, "/", validSubmission())
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	id := store.msgs[0].ID.Hex()

	rec, body := call(t, h.Messages, http.MethodGet, "/api/contact/messages?page=1&limit=2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Len(t, data["messages"], 2)
	pagination := data["pagination"].(map[string]any)
	assert.Equal(t, float64(3), pagination["totalMessages"])
	assert.Equal(t, float64(2), pagination["totalPages"])
	assert.Equal(t, true, pagination["hasNext"])
	assert.Equal(t, false, pagination["hasPrev"])
	first := data["messages"].([]any)[0].(map[string]any)
	assert.NotContains(t, first, "ipAddress")

	req := testutil.WithChiURLParams(jsonRequest(t, http.MethodPut, "/api/contact/messages/"+id+"/status", map[string]any{"status": "archived"}), "id", id)
	rec, body = serve(t, h.UpdateStatus, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message status updated successfully", body["message"])
	assert.Equal(t, "archived", body["data"].(map[string]any)["status"])

	req = testutil.WithChiURLParams(jsonRequest(t, http.MethodPut, "/", map[string]any{"status": "spam"}), "id", id)
	rec, body = serve(t, h.UpdateStatus, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status value", body["message"])

	rec, body = call(t, h.Stats, http.MethodGet, "/api/contact/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := body["data"].(map[string]any)
	assert.Equal(t, float64(3), stats["total"])
	assert.Equal(t, float64(3), stats["today"])
	byStatus := stats["byStatus"].(map[string]any)
	assert.Equal(t, float64(2), byStatus["new"])
	assert.Equal(t, float64(1), byStatus["archived"])
	assert.Equal(t, float64(0), byStatus["replied"])

	req = testutil.WithChiURLParams(jsonRequest(t, http.MethodDelete, "/", nil), "id", id)
	rec, body = serve(t, h.Delete, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Message deleted successfully", body["message"])

	req = testutil.WithChiURLParams(jsonRequest(t, http.MethodDelete, "/", nil), "id", id)
	rec, body = serve(t, h.Delete, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Message not found", body["message"])
}

func TestContactMessage_RevealsVisitor(t *testing.T) {
	cipher, err := utils.NewFieldCipher("MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlhYmNkZWY=")
	require.NoError(t, err)
	store := &memContacts{}
	svc := services.NewContactService(store, cipher, nil, zap.NewNop())
	h := NewContactHandler(svc, nil, clientip.Resolver{}, nil, zap.NewNop())

	req := jsonRequest(t, http.MethodPost, "/api/contact/submit", validSubmission())
	req.RemoteAddr = "203.0.113.9:4321"
	req.Header.Set("User-Agent", "test-agent/1.0")
	rec, _ := serve(t, h.Submit, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, store.msgs, 1)
	assert.NotEqual(t, "203.0.113.9", store.msgs[0].IPAddress)
	id := store.msgs[0].ID.Hex()

	req = testutil.WithChiURLParams(jsonRequest(t, http.MethodGet, "/api/contact/messages/"+id, nil), "id", id)
	rec, body := serve(t, h.Message, req)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, id, data["_id"])
	assert.Equal(t, "Hello", data["subject"])
	visitor := data["visitor"].(map[string]any)
	assert.Equal(t, "203.0.113.9", visitor["ipAddress"])
	assert.Equal(t, "test-agent/1.0", visitor["userAgent"])

	missing := "000000000000000000000000"
	req = testutil.WithChiURLParams(jsonRequest(t, http.MethodGet, "/", nil), "id", missing)
	rec, body = serve(t, h.Message, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Message not found", body["message"])
}

func TestContactMessages_BadStatusFilter(t *testing.T) {
	h, _, _ := newContactFixture()
	rec, body := call(t, h.Messages, http.MethodGet, "/api/contact/messages?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid status value", body["message"])
}

func TestContactFeed(t *testing.T) {
	h, _, hub := newContactFixture()
	srv := httptest.NewServer(http.HandlerFunc(h.Feed))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections() == 1 }, 2*time.Second, 10*time.Millisecond)

	rec, _ := call(t, h.Submit, http.MethodPost, "/", validSubmission())
	require.Equal(t, http.StatusCreated, rec.Code)

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event services.InboxEvent
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, services.EventContactNew, event.Type)
	require.NotNil(t, event.Message)
	assert.Equal(t, "Jane", event.Message.Name)
}

func TestContactFeed_RejectsForeignOrigin(t *testing.T) {
	h, _, _ := newContactFixture()
	srv := httptest.NewServer(http.HandlerFunc(h.Feed))
	defer srv.Close()

	header := http.Header{"Origin": []string{"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestUploadFile(t *testing.T) {
	up := &stubUploader{}
	h := NewUploadHandler(up, zap.NewNop())

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "avatar.png")
	require.NoError(t, err)
	_, _ = part.Write([]byte("\x89PNG\r\n\x1a\n"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload?folder=projects", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, body := serve(t, h.UploadFile, req)
	require.Equal(t, http.StatusOK, rec.Code, body)
	assert.Equal(t, "https://res.cloudinary.com/demo/avatar.png", body["url"])
	assert.Equal(t, "projects", up.folder)
}

func TestUploadFile_Errors(t *testing.T) {
	rec, body := call(t, NewUploadHandler(nil, zap.NewNop()).UploadFile, http.MethodPost, "/api/upload", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, false, body["success"])

	h := NewUploadHandler(&stubUploader{err: apperr.Invalid("file", "Unsupported file type")}, zap.NewNop())
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "notes.exe")
	require.NoError(t, err)
	_, _ = part.Write([]byte("MZ"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec, body = serve(t, h.UploadFile, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Unsupported file type", body["message"])

	rec, _ = call(t, h.UploadFile, http.MethodPost, "/api/upload", "{}")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

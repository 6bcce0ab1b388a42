package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AnshRaj112/portfolio-backend/internal/services"
	"github.com/AnshRaj112/portfolio-backend/pkg/clientip"
)

const (
	feedPongWait   = 90 * time.Second
	feedPingPeriod = 30 * time.Second
	feedWriteWait  = 10 * time.Second
)

// ContactHandler serves the visitor contact form and the admin inbox.
type ContactHandler struct {
	contacts *services.ContactService
	hub      *services.InboxHub
	ips      clientip.Resolver
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewContactHandler wires the inbox routes. allowedOrigins restricts which
// browser origins may open the live feed.
func NewContactHandler(contacts *services.ContactService, hub *services.InboxHub, ips clientip.Resolver, allowedOrigins []string, logger *zap.Logger) *ContactHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[strings.TrimRight(strings.ToLower(strings.TrimSpace(o)), "/")] = true
	}
	return &ContactHandler{
		contacts: contacts,
		hub:      hub,
		ips:      ips,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return origins[strings.TrimRight(strings.ToLower(origin), "/")]
			},
		},
	}
}

type submitContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

type submittedContact struct {
	ID          string    `json:"id"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitContactRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	msg, err := h.contacts.Submit(r.Context(), services.ContactInput{
		Name:      req.Name,
		Email:     req.Email,
		Subject:   req.Subject,
		Message:   req.Message,
		IPAddress: h.ips.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		writeError(w, h.logger, err, "Sorry, there was an error sending your message. Please try again.")
		return
	}

	h.logger.Info("contact message received", zap.String("id", msg.ID.Hex()))
	writeSuccess(w, http.StatusCreated, "Thank you for your message! I will get back to you soon.", submittedContact{
		ID:          msg.ID.Hex(),
		SubmittedAt: msg.CreatedAt,
	})
}

func (h *ContactHandler) Messages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.contacts.List(r.Context(), services.ContactQuery{
		Status: q.Get("status"),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, h.logger, err, "Error fetching messages")
		return
	}
	writeSuccess(w, http.StatusOK, "", result)
}

// Message returns one message with its decrypted visitor metadata.
func (h *ContactHandler) Message(w http.ResponseWriter, r *http.Request) {
	detail, err := h.contacts.Message(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err, "Error fetching message")
		return
	}
	writeSuccess(w, http.StatusOK, "", detail)
}

func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err, "")
		return
	}

	msg, err := h.contacts.SetStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		writeError(w, h.logger, err, "Error updating message status")
		return
	}
	writeSuccess(w, http.StatusOK, "Message status updated successfully", msg)
}

func (h *ContactHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.contacts.Stats(r.Context())
	if err != nil {
		writeError(w, h.logger, err, "Error fetching contact statistics")
		return
	}
	writeSuccess(w, http.StatusOK, "", stats)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.contacts.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.logger, err, "Error deleting message")
		return
	}
	writeSuccess(w, http.StatusOK, "Message deleted successfully", nil)
}

// feedConn serializes writes; the hub and the ping loop write concurrently.
type feedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *feedConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *feedConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait))
}

func (c *feedConn) Close() error {
	return c.conn.Close()
}

// Feed streams inbox events to an admin over WebSocket. Authentication is
// done by the route's admin guard; client frames are read only to keep the
// connection alive.
func (h *ContactHandler) Feed(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	fc := &feedConn{conn: conn}
	defer fc.Close()

	unregister := h.hub.Register(fc)
	defer unregister()

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(feedPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := fc.ping(); err != nil {
					return
				}
			}
		}
	}()

	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(feedPongWait))
	}
}

package middleware

import (
	"encoding/gob"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const flashSessionName = "ppe-flash"

// Register types for gob encoding (used by sessions)
func init() {
	gob.Register(FlashMessage{})
}

// FlashMessage is a one-shot notice shown on the next page
type FlashMessage struct {
	Type    string
	Message string
}

// FlashStore keeps flash messages in a signed cookie
type FlashStore struct {
	store sessions.Store
}

// NewFlashStore creates a cookie-backed flash store
func NewFlashStore(key []byte, secure bool) *FlashStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &FlashStore{store: store}
}

// Add queues a message. Call it before writing the response.
func (f *FlashStore) Add(c *gin.Context, kind, message string) {
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		// A cookie signed with an old key decodes as a fresh session
		slog.Debug("Discarding unreadable flash session", "error", err)
	}
	session.AddFlash(FlashMessage{Type: kind, Message: message})
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
}

// Pop returns and clears queued messages
func (f *FlashStore) Pop(c *gin.Context) []FlashMessage {
	session, err := f.store.Get(c.Request, flashSessionName)
	if err != nil {
		return nil
	}

	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}

	messages := make([]FlashMessage, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(FlashMessage); ok {
			messages = append(messages, m)
		}
	}
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Error("Failed to save session", "error", err)
	}
	return messages
}

// Package session manages the server side session store and the flash
// notices shown after redirects.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"

	"github.com/GoCrashStats-Admin/GoCrashStats-Admin/internal/db/models"
)

// Store is the global session store instance.
var Store *session.Store

// Notice levels for flash messages.
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
)

// Notice is a one-shot message shown to the user on the next rendered page.
type Notice struct {
	Level   string
	Message string
}

// Data represents the session data structure.
type Data struct {
	User    models.User
	Notices []Notice
}

// Write writes the session data for the given session ID with an expiration duration.
func (s *Data) Write(sessionID string, exp time.Duration) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}

	return Store.Storage.Set(sessionID, out, exp)
}

// Read reads the session data for the given session ID.
func (s *Data) Read(sessionID string) error {
	byteData, err := Store.Storage.Get(sessionID)
	if err != nil {
		return err
	}

	return json.Unmarshal(byteData, s)
}

// AddFlash appends a flash notice to the session identified by sessionID.
func AddFlash(sessionID string, exp time.Duration, level, message string) error {
	data := new(Data)
	if err := data.Read(sessionID); err != nil {
		return err
	}

	data.Notices = append(data.Notices, Notice{Level: level, Message: message})

	return data.Write(sessionID, exp)
}

// PopFlashes returns and clears all pending flash notices of the session.
// An unknown session yields no notices.
func PopFlashes(sessionID string, exp time.Duration) []Notice {
	data := new(Data)
	if err := data.Read(sessionID); err != nil {
		return nil
	}

	notices := data.Notices
	if len(notices) == 0 {
		return nil
	}

	data.Notices = nil
	_ = data.Write(sessionID, exp)

	return notices
}

// Init initializes the session store with the provided storage backend.
func Init(storage storage.Storage) {
	if storage == nil {
		panic("storage is nil")
	}

	Store = session.New(session.Config{
		Storage: storage,
	})
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

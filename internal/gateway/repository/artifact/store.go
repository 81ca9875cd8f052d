// Package artifact stores exported session outputs.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists exported files grouped by session.
type Store interface {
	Put(ctx context.Context, sessionID, name string, content []byte, contentType string) error
	Get(ctx context.Context, sessionID, name string) ([]byte, error)
	// GetURL returns a time-limited download link, or "" when the backend
	// cannot serve links.
	GetURL(ctx context.Context, sessionID, name string) (string, error)
	List(ctx context.Context, sessionID string) ([]string, error)
}

var (
	ErrNotFound   = errors.New("artifact not found")
	ErrInvalidKey = errors.New("invalid artifact key")
)

// objectKey joins a session id and file name into "<session>/<name>".
func objectKey(sessionID, name string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if sessionID == "" {
		return "", fmt.Errorf("%w: session_id is required", ErrInvalidKey)
	}
	if strings.Contains(sessionID, "/") {
		return "", fmt.Errorf("%w: session_id must not contain '/'", ErrInvalidKey)
	}
	if name == "" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: name is empty or escapes the session", ErrInvalidKey)
	}
	return sessionID + "/" + name, nil
}

func sessionPrefix(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("%w: session_id is required", ErrInvalidKey)
	}
	return sessionID + "/", nil
}

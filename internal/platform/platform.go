// Package platform defines the capability surface the gallery examples call:
// authentication, file storage, key-value storage, AI chat and static hosting.
// Implementations live in sibling packages; tests substitute scripted doubles.
package platform

import (
	"context"
	"time"
	"unicode/utf8"
)

// User is an authenticated platform account.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Guest     bool      `json:"guest"`
	CreatedAt time.Time `json:"created_at"`
}

// Auth observes and establishes the caller's session.
type Auth interface {
	// CurrentUser confirms an existing session carried by ctx.
	CurrentUser(ctx context.Context) (*User, error)
	// SignIn establishes a new session and stores it in the ctx session holder.
	SignIn(ctx context.Context) (*User, error)
}

// FileInfo describes one entry of a user's file tree.
type FileInfo struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	IsDir    bool      `json:"is_dir"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Blob is raw file content as returned by FileSystem.Read.
type Blob []byte

// Text decodes the blob as UTF-8.
func (b Blob) Text() (string, error) {
	if !utf8.Valid(b) {
		return "", ErrNotText
	}
	return string(b), nil
}

// FileSystem is per-user file storage.
type FileSystem interface {
	Write(ctx context.Context, path string, content []byte) (*FileInfo, error)
	Read(ctx context.Context, path string) (Blob, error)
	ReadDir(ctx context.Context, path string) ([]FileInfo, error)
	Mkdir(ctx context.Context, path string) (*FileInfo, error)
}

// KeyValue is per-user key-value storage.
type KeyValue interface {
	Set(ctx context.Context, key, value string) error
	// Get returns found=false with a nil error for a missing key.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	List(ctx context.Context) ([]string, error)
	Incr(ctx context.Context, key string, delta int64) (int64, error)
}

// AI answers a single chat prompt.
type AI interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// Site is a directory published under a subdomain.
type Site struct {
	Subdomain string    `json:"subdomain"`
	RootDir   string    `json:"root_dir"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// Hosting publishes directories of the caller's file tree.
type Hosting interface {
	Create(ctx context.Context, subdomain, dir string) (*Site, error)
	List(ctx context.Context) ([]Site, error)
	Delete(ctx context.Context, subdomain string) error
}

// Platform bundles every capability the examples use.
type Platform struct {
	Auth       Auth
	FS         FileSystem
	KV         KeyValue
	AI         AI
	Hosting    Hosting
	RandomName func() string
}

package files

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidSignature = errors.New("invalid file signature")
	ErrExpired          = errors.New("signed url expired")
	ErrInvalidPath      = errors.New("invalid file path")
)

var unsafeChars = regexp.MustCompile(`[^0-9a-zA-Z!\-_.*'()]`)

// Sanitize replaces every character outside the storage-safe set with _
func Sanitize(filename string) string {
	return unsafeChars.ReplaceAllString(filename, "_")
}

// Local stores files on disk under Root, one directory per owner
type Local struct {
	Root    string
	BaseURL string
	Secret  []byte
}

// NewLocal creates the root directory if needed
func NewLocal(root, baseURL, secret string) (*Local, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &Local{
		Root:    root,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Secret:  []byte(secret),
	}, nil
}

// Key returns the storage path of an owner's file
func Key(ownerID, filename string) string {
	return ownerID + "/" + Sanitize(filename)
}

// Upload writes content to <owner>/<sanitized filename>, replacing any
// existing file, and returns the storage path
func (l *Local) Upload(ctx context.Context, ownerID, filename string, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := Key(ownerID, filename)
	full, err := l.resolve(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("failed to create owner directory: %w", err)
	}

	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to store file: %w", err)
	}
	return key, nil
}

// Read returns the content stored at key
func (l *Local) Read(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := l.resolve(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// List returns the file names stored for an owner, sorted
func (l *Local) List(ctx context.Context, ownerID string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := l.resolve(ownerID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && !strings.HasSuffix(e.Name(), ".tmp") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes an owner's file. Missing files are not an error.
func (l *Local) Delete(ctx context.Context, ownerID, filename string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := l.resolve(ownerID + "/" + filename)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// SignedURL returns a download link for key valid for ttl
func (l *Local) SignedURL(key string, ttl time.Duration, now time.Time) (string, error) {
	if _, err := l.resolve(key); err != nil {
		return "", err
	}
	expires := now.Add(ttl).Unix()
	q := url.Values{}
	q.Set("expires", strconv.FormatInt(expires, 10))
	q.Set("sig", l.sign(key, expires))
	return l.BaseURL + "/files/" + key + "?" + q.Encode(), nil
}

// Verify checks a signature produced by SignedURL
func (l *Local) Verify(key, expires, sig string, now time.Time) error {
	exp, err := strconv.ParseInt(expires, 10, 64)
	if err != nil {
		return ErrInvalidSignature
	}
	want := l.sign(key, exp)
	if !hmac.Equal([]byte(want), []byte(sig)) {
		return ErrInvalidSignature
	}
	if now.Unix() > exp {
		return ErrExpired
	}
	return nil
}

func (l *Local) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, l.Secret)
	mac.Write([]byte(key + "|" + strconv.FormatInt(expires, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve maps a storage key to a path under Root, rejecting traversal
func (l *Local) resolve(key string) (string, error) {
	clean := path.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, key)
	}
	return filepath.Join(l.Root, filepath.FromSlash(clean)), nil
}

// Package photo turns an image file into the data URL stored in a task's
// photoUrl field.
package photo

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

var (
	ErrNotImage = errors.New("photo: not an image")
	ErrTooLarge = errors.New("photo: file too large")
	ErrEmpty    = errors.New("photo: empty file")
)

// Load reads the file at path. maxBytes <= 0 disables the size limit.
func Load(path string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("photo: %w", err)
	}
	defer f.Close()
	return FromReader(f, maxBytes)
}

// FromReader sniffs the content type of r and returns
// "data:<mime>;base64,<payload>".
func FromReader(r io.Reader, maxBytes int64) (string, error) {
	if maxBytes > 0 {
		r = io.LimitReader(r, maxBytes+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("photo: read: %w", err)
	}
	if len(b) == 0 {
		return "", ErrEmpty
	}
	if maxBytes > 0 && int64(len(b)) > maxBytes {
		return "", fmt.Errorf("%w: limit %d bytes", ErrTooLarge, maxBytes)
	}
	mime := http.DetectContentType(b)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: %s", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}

// MIME extracts the media type from a data URL, or "" if s is not one.
func MIME(s string) string {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return ""
	}
	mime, _, ok := strings.Cut(rest, ";")
	if !ok {
		return ""
	}
	return mime
}

package photo

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func TestFromReader(t *testing.T) {
	t.Parallel()
	got, err := FromReader(bytes.NewReader(pngPixel), 1024)
	if err != nil {
		t.Fatalf("FromReader: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,iVBORw0KGgo") {
		t.Fatalf("data url = %.40s...", got)
	}
	if MIME(got) != "image/png" {
		t.Fatalf("MIME = %q", MIME(got))
	}
}

func TestFromReaderRejects(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		data []byte
		max  int64
		want error
	}{
		{name: "text", data: []byte("hello, world"), max: 0, want: ErrNotImage},
		{name: "empty", data: nil, max: 0, want: ErrEmpty},
		{name: "too large", data: pngPixel, max: 10, want: ErrTooLarge},
	}
	for _, tt := range tests {
		if _, err := FromReader(bytes.NewReader(tt.data), tt.max); !errors.Is(err, tt.want) {
			t.Fatalf("%s: err = %v, want %v", tt.name, err, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "bike.png")
	if err := os.WriteFile(path, pngPixel, 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path, int64(len(pngPixel))); err != nil {
		t.Fatalf("Load at exact limit: %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.png"), 0); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("missing file err = %v", err)
	}
}

func TestMIME(t *testing.T) {
	t.Parallel()
	for in, want := range map[string]string{
		"data:image/jpeg;base64,AAAA": "image/jpeg",
		"https://example.com/a.png":   "",
		"data:broken":                 "",
		"":                            "",
	} {
		if got := MIME(in); got != want {
			t.Fatalf("MIME(%q) = %q, want %q", in, got, want)
		}
	}
}

// Package testutil builds dump directories for tests: compressed payload
// files and segments.json manifests.
package testutil

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

// ManifestName is the manifest file name the loader expects by default.
const ManifestName = "segments.json"

// Segment is a manifest descriptor as a test wants to write it. Start is
// written verbatim, so it may be a number, a string, or anything else a
// malformed manifest would contain.
type Segment struct {
	Start       any    `json:"start,omitempty"`
	ContentFile string `json:"content_file,omitempty"`
	Name        string `json:"name,omitempty"`
}

// Zlib compresses data as a zlib stream.
func Zlib(t testing.TB, data []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	zw := zlib.NewWriter(&out)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("zlib write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zlib close: %v", err)
	}
	return out.Bytes()
}

// Deflate compresses data as a raw deflate stream.
func Deflate(t testing.TB, data []byte) []byte {
	t.Helper()
	var out bytes.Buffer
	fw, err := flate.NewWriter(&out, flate.DefaultCompression)
	if err != nil {
		t.Fatalf("flate writer: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("flate write: %v", err)
	}
	if err := fw.Close(); err != nil {
		t.Fatalf("flate close: %v", err)
	}
	return out.Bytes()
}

// WriteFile writes raw bytes to dir/name, creating parent directories.
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

// WritePayload zlib-compresses data into dir/name.
func WritePayload(t testing.TB, dir, name string, data []byte) string {
	t.Helper()
	return WriteFile(t, dir, name, Zlib(t, data))
}

// WriteManifest encodes v (usually []Segment) as dir/segments.json.
func WriteManifest(t testing.TB, dir string, v any) string {
	t.Helper()
	doc, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		t.Fatalf("marshal manifest: %v", err)
	}
	return WriteFile(t, dir, ManifestName, doc)
}

// WriteRawManifest writes dir/segments.json verbatim.
func WriteRawManifest(t testing.TB, dir, doc string) string {
	t.Helper()
	return WriteFile(t, dir, ManifestName, []byte(doc))
}

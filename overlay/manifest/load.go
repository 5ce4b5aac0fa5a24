package manifest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/joshuapare/overlaykit/internal/logger"
	"github.com/joshuapare/overlaykit/internal/mmfile"
	"github.com/joshuapare/overlaykit/overlay/store"
	"github.com/joshuapare/overlaykit/pkg/types"
)

// Manifest descriptor keys.
const (
	keyStart       = "start"
	keyContentFile = "content_file"
	keyName        = "name"
)

// Load reads the manifest in dir and inserts every loadable segment into s,
// in manifest order. Structural problems (missing directory or manifest,
// malformed manifest) return an error and leave s untouched. Per-segment
// problems never abort the batch; they are reported in the result.
//
// Cancellation is checked between segments. A cancelled load returns the
// partial result together with the context error.
func Load(ctx context.Context, dir string, s *store.Store, opts *Options) (*types.LoadResult, error) {
	o := resolveOptions(opts)
	result := &types.LoadResult{ID: uuid.NewString()}
	log := logger.Or(o.Logger).With("load_id", result.ID, "dir", dir)

	segments, err := readManifest(dir, o.ManifestName)
	if err != nil {
		log.Error("manifest unavailable", "error", err)
		return nil, err
	}
	result.Total = len(segments)

	for i, raw := range segments {
		if err := ctx.Err(); err != nil {
			log.Warn("load cancelled", "segment", i, "successful", result.Successful)
			return result, err
		}

		seg, err := loadSegment(dir, i, raw, s, o.MaxPayloadSize)
		if err != nil {
			result.Skipped = append(result.Skipped, types.SkippedSegment{
				Index:       i,
				Name:        seg.name,
				ContentFile: seg.contentFile,
				Err:         err,
			})
			log.Warn("segment skipped",
				"segment", i,
				"name", seg.name,
				"content_file", seg.contentFile,
				"error", err)
			continue
		}

		result.Successful++
		log.Debug("segment loaded",
			"segment", i,
			"name", seg.name,
			"content_file", seg.contentFile,
			"start", fmt.Sprintf("%#x", seg.start),
			"bytes", seg.size)
	}

	level := slog.LevelInfo
	if result.Failed() {
		level = slog.LevelWarn
	}
	log.Log(ctx, level, "manifest loaded",
		"successful", result.Successful,
		"total", result.Total,
		"skipped", len(result.Skipped))
	return result, nil
}

// readManifest locates, decodes and shape-checks the manifest, returning its
// elements undecoded beyond generic JSON values.
func readManifest(dir, name string) ([]any, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, types.WrapErr(types.ErrKindManifestNotFound,
			fmt.Sprintf("manifest: directory %s", dir), err)
	}
	if !info.IsDir() {
		return nil, types.Errorf(types.ErrKindManifestNotFound,
			"manifest: %s is not a directory", dir)
	}

	path := filepath.Join(dir, name)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, types.WrapErr(types.ErrKindManifestNotFound,
				fmt.Sprintf("manifest: %s not found in %s", name, dir), err)
		}
		return nil, types.WrapErr(types.ErrKindManifestParse,
			fmt.Sprintf("manifest: open %s", path), err)
	}
	defer f.Close()

	if st, err := f.Stat(); err == nil && st.IsDir() {
		return nil, types.Errorf(types.ErrKindManifestNotFound,
			"manifest: %s is a directory", path)
	}

	return decodeManifest(f, path)
}

// decodeManifest parses a manifest stream. A UTF-8 or UTF-16 byte order mark
// is honored; without one the stream is read as UTF-8.
func decodeManifest(r io.Reader, path string) ([]any, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	dec := json.NewDecoder(transform.NewReader(r, decoder))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, types.WrapErr(types.ErrKindManifestParse,
			fmt.Sprintf("manifest: decode %s", path), err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, types.Errorf(types.ErrKindManifestParse,
			"manifest: %s has trailing data after the segment array", path)
	}

	segments, ok := doc.([]any)
	if !ok {
		return nil, types.Errorf(types.ErrKindManifestParse,
			"manifest: %s should contain an array of segment objects, got %s", path, jsonKind(doc))
	}
	return segments, nil
}

// segment carries what was learned about one descriptor, for logging and
// skip records even when loading fails part way.
type segment struct {
	name        string
	contentFile string
	start       uint64
	size        int
}

func loadSegment(dir string, i int, raw any, s *store.Store, limit int64) (segment, error) {
	var seg segment

	obj, ok := raw.(map[string]any)
	if !ok {
		return seg, skipf(nil, "segment %d is %s, not an object", i, jsonKind(raw))
	}
	seg.name, _ = obj[keyName].(string)

	startVal, hasStart := obj[keyStart]
	cf, _ := obj[keyContentFile].(string)
	seg.contentFile = cf
	if !hasStart || startVal == nil || startVal == "" || cf == "" {
		return seg, skipf(nil, "segment %d missing %q or %q", i, keyStart, keyContentFile)
	}

	start, err := startAddress(startVal)
	if err != nil {
		return seg, skipf(err, "segment %d: unparsable start address", i)
	}
	seg.start = start

	path := cf
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, filepath.FromSlash(cf))
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return seg, skipf(err, "segment %d: content file %q not found", i, cf)
		}
		return seg, skipf(err, "segment %d: stat content file %q", i, cf)
	}

	data, err := readPayload(path, limit)
	if err != nil {
		return seg, skipf(err, "segment %d: read content file %q", i, cf)
	}
	if len(data) == 0 {
		return seg, skipf(nil, "segment %d: content file %q is empty after decompression", i, cf)
	}

	if err := s.Insert(start, data); err != nil {
		return seg, skipf(err, "segment %d: insert at %#x", i, start)
	}
	seg.size = len(data)
	return seg, nil
}

// readPayload maps a content file and inflates it. The mapping is released
// before returning; the result never aliases it.
func readPayload(path string, limit int64) ([]byte, error) {
	compressed, release, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	defer release()

	return inflate(compressed, limit)
}

func skipf(cause error, format string, args ...any) error {
	return types.WrapErr(types.ErrKindSegmentSkipped, fmt.Sprintf(format, args...), cause)
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case []any:
		return "an array"
	case string:
		return "a string"
	case json.Number:
		return "a number"
	case bool:
		return "a boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

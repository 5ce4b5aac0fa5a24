package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"

	"github.com/joshuapare/overlaykit/internal/logger"
	"github.com/joshuapare/overlaykit/overlay/store"
)

// descriptor is the on-disk form of one segment written by Save.
type descriptor struct {
	Start       string `json:"start"`
	ContentFile string `json:"content_file"`
	Name        string `json:"name,omitempty"`
}

// PayloadName returns the content file name Save uses for a region at base.
func PayloadName(base uint64) string {
	return fmt.Sprintf("seg_%016x.bin", base)
}

// Save writes every region of s into dir as zlib-compressed payloads plus a
// manifest that Load reads back into an identical store. Files are written
// to a temporary name and renamed into place. It returns the number of
// segments written.
func Save(ctx context.Context, dir string, s *store.Store, opts *Options) (int, error) {
	o := resolveOptions(opts)
	log := logger.Or(o.Logger).With("dir", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("manifest: create %s: %w", dir, err)
	}

	descriptors := make([]descriptor, 0, s.Len())
	for r := range s.All() {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		var payload bytes.Buffer
		zw := zlib.NewWriter(&payload)
		if _, err := zw.Write(r.Data); err != nil {
			return 0, fmt.Errorf("manifest: compress %s: %w", r, err)
		}
		if err := zw.Close(); err != nil {
			return 0, fmt.Errorf("manifest: compress %s: %w", r, err)
		}

		name := PayloadName(r.Base)
		if err := writeAtomic(dir, name, payload.Bytes()); err != nil {
			return 0, err
		}
		descriptors = append(descriptors, descriptor{
			Start:       fmt.Sprintf("%#x", r.Base),
			ContentFile: name,
		})
		log.Debug("segment saved", "start", fmt.Sprintf("%#x", r.Base), "bytes", r.Len(), "compressed", payload.Len())
	}

	doc, err := json.MarshalIndent(descriptors, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("manifest: encode: %w", err)
	}
	doc = append(doc, '\n')
	if err := writeAtomic(dir, o.ManifestName, doc); err != nil {
		return 0, err
	}

	log.Info("manifest saved", "segments", len(descriptors))
	return len(descriptors), nil
}

func writeAtomic(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("manifest: write %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("manifest: write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("manifest: write %s: %w", name, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("manifest: write %s: %w", name, err)
	}
	return nil
}

package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
)

var errPayloadTooLarge = errors.New("decompressed payload exceeds size limit")

// looksZlib reports whether b starts with a valid zlib (RFC 1950) header:
// deflate method, window <= 32K, and a header checksum divisible by 31.
func looksZlib(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	cmf, flg := b[0], b[1]
	return cmf&0x0F == 8 && cmf>>4 <= 7 && (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// inflate decompresses a segment payload. zlib-wrapped streams are tried
// first when the header matches; everything else is read as raw deflate.
func inflate(compressed []byte, limit int64) ([]byte, error) {
	if looksZlib(compressed) {
		out, err := inflateWith(compressed, limit, func(r io.Reader) (io.ReadCloser, error) {
			return zlib.NewReader(r)
		})
		if err == nil || errors.Is(err, errPayloadTooLarge) {
			return out, err
		}
		// A raw deflate stream can start with bytes that look like a zlib header.
	}
	return inflateWith(compressed, limit, func(r io.Reader) (io.ReadCloser, error) {
		return flate.NewReader(r), nil
	})
}

func inflateWith(compressed []byte, limit int64, open func(io.Reader) (io.ReadCloser, error)) ([]byte, error) {
	rc, err := open(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var r io.Reader = rc
	if limit > 0 {
		r = io.LimitReader(rc, limit+1)
	}
	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, err
	}
	if limit > 0 && int64(out.Len()) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", errPayloadTooLarge, limit)
	}
	return out.Bytes(), nil
}

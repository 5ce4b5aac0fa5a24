// Package mmfile maps payload and image files into memory where the platform
// supports it, and reads them whole otherwise.
package mmfile

func noop() error { return nil }

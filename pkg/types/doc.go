// Package types defines the shared vocabulary of the overlay engine: regions,
// address windows, memory snapshots with validity masks, manifest load
// results, and the typed errors returned by the engine packages.
//
// Design goals:
//   - Explicit ownership: stores copy on the way in and on the way out.
//   - Overflow-safe address arithmetic on the full 64-bit address space.
//   - Typed errors with stable categories (invalid input/manifest/segment).
//
// This package has no dependencies beyond the standard library.
package types

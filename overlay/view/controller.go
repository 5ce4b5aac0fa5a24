package view

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/joshuapare/overlaykit/internal/logger"
	"github.com/joshuapare/overlaykit/overlay/compose"
	"github.com/joshuapare/overlaykit/overlay/manifest"
	"github.com/joshuapare/overlaykit/overlay/source"
	"github.com/joshuapare/overlaykit/overlay/store"
	"github.com/joshuapare/overlaykit/pkg/types"
)

// Controller ties a primary source, an injected-region store and a Port
// together for one displayed window. It is safe for concurrent use.
type Controller struct {
	src          source.Source
	port         Port
	store        *store.Store
	log          *slog.Logger
	manifestOpts manifest.Options

	mu     sync.Mutex
	window types.Window
	model  Model
}

// New creates a controller reading from src and notifying port. Either may
// be nil: without a source every refresh yields an empty model, and without
// a port notifications are dropped.
func New(src source.Source, port Port, opts ...Option) *Controller {
	c := &Controller{
		src:  src,
		port: port,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.store == nil {
		c.store = store.New()
	}
	c.log = logger.Or(c.log)
	if c.manifestOpts.Logger == nil {
		c.manifestOpts.Logger = c.log
	}
	return c
}

// Store returns the controller's region store.
func (c *Controller) Store() *store.Store { return c.store }

// SetWindow changes the displayed window. It does not refresh.
func (c *Controller) SetWindow(address uint64, size int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.window = types.Window{Address: address, Length: size}
}

// Window returns the displayed window.
func (c *Controller) Window() types.Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

// Model returns the most recently composed model.
func (c *Controller) Model() Model {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.model
}

// Inject stores data at address. If the region overlaps the displayed window
// the view is refreshed; otherwise, when navigate is set, the port is asked
// to move to address.
func (c *Controller) Inject(ctx context.Context, address uint64, data []byte, navigate bool) error {
	if err := c.store.Insert(address, data); err != nil {
		return err
	}
	c.log.Debug("region injected", "address", fmt.Sprintf("%#x", address), "bytes", len(data))

	if c.overlapsWindow(types.Region{Base: address, Data: data}) {
		_, err := c.Refresh(ctx)
		return err
	}
	if navigate && c.port != nil {
		c.port.Navigate(ctx, address)
	}
	return nil
}

func (c *Controller) overlapsWindow(r types.Region) bool {
	w := c.Window()
	wLast, ok := w.Last()
	if !ok {
		return false
	}
	rLast, ok := r.Last()
	if !ok {
		return false
	}
	_, ok = types.Intersect(
		types.Range{Start: w.Address, Last: wLast},
		types.Range{Start: r.Base, Last: rLast},
	)
	return ok
}

// Injected returns the first injected region overlapping w, clipped to w.
func (c *Controller) Injected(w types.Window) (uint64, []byte, bool) {
	return compose.QueryOverlap(w, c.store)
}

// Remove deletes the region based exactly at address and refreshes. It
// reports whether a region was removed.
func (c *Controller) Remove(ctx context.Context, address uint64) (bool, error) {
	removed := c.store.Remove(address)
	c.log.Debug("region removed", "address", fmt.Sprintf("%#x", address), "removed", removed)
	_, err := c.Refresh(ctx)
	return removed, err
}

// ClearAll deletes every injected region and refreshes.
func (c *Controller) ClearAll(ctx context.Context) error {
	c.store.Clear()
	c.log.Debug("regions cleared")
	_, err := c.Refresh(ctx)
	return err
}

// Refresh re-reads the displayed window from the source, composes the
// injected regions over it and hands the result to the port. Without a
// source the model is cleared and the port is not notified.
func (c *Controller) Refresh(ctx context.Context) (Model, error) {
	c.mu.Lock()
	w := c.window
	if c.src == nil {
		c.model = Model{Window: w}
		c.mu.Unlock()
		return Model{Window: w}, nil
	}
	c.mu.Unlock()

	snap, err := c.src.Read(ctx, w.Address, w.Length)
	if err != nil {
		return Model{}, fmt.Errorf("view: read %s: %w", w, err)
	}
	st := compose.ComposeStats(w, snap, c.store)

	m := Model{Window: w, Data: snap.Data, Mask: snap.Mask, Delta: snap.Delta}
	c.mu.Lock()
	c.model = m
	c.mu.Unlock()

	c.log.Debug("view refreshed",
		"window", w.String(),
		"regions", st.Regions,
		"injected_bytes", st.Bytes,
		"valid", snap.ValidCount())

	if c.port != nil {
		c.port.Refresh(ctx, m)
	}
	return m, nil
}

// LoadDirectory loads a dump directory into the store and refreshes the view
// when at least one segment was loaded.
func (c *Controller) LoadDirectory(ctx context.Context, dir string) (*types.LoadResult, error) {
	opts := c.manifestOpts
	res, err := manifest.Load(ctx, dir, c.store, &opts)
	if err != nil {
		return res, err
	}
	if res.Successful > 0 {
		if _, err := c.Refresh(ctx); err != nil {
			return res, err
		}
	}
	return res, nil
}

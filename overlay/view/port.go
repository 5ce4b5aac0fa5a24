package view

import (
	"context"

	"github.com/joshuapare/overlaykit/pkg/types"
)

// Port is the consumer side of a Controller.
type Port interface {
	// Refresh delivers a newly composed model for the current window.
	Refresh(ctx context.Context, m Model)
	// Navigate asks the consumer to move its view to address.
	Navigate(ctx context.Context, address uint64)
}

// Model is the composed view of one window. Data and Mask are shared with
// the controller and must be treated as read-only.
type Model struct {
	Window types.Window
	Data   []byte
	Mask   []byte
	Delta  any
}

// Empty reports whether the model holds no bytes.
func (m Model) Empty() bool { return len(m.Data) == 0 }

// PortFuncs adapts a pair of functions to Port. Nil fields are skipped.
type PortFuncs struct {
	OnRefresh  func(ctx context.Context, m Model)
	OnNavigate func(ctx context.Context, address uint64)
}

// Refresh calls OnRefresh.
func (p PortFuncs) Refresh(ctx context.Context, m Model) {
	if p.OnRefresh != nil {
		p.OnRefresh(ctx, m)
	}
}

// Navigate calls OnNavigate.
func (p PortFuncs) Navigate(ctx context.Context, address uint64) {
	if p.OnNavigate != nil {
		p.OnNavigate(ctx, address)
	}
}

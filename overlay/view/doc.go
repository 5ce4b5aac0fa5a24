// Package view drives a memory view: it owns the displayed window, reads it
// from a primary source, composes injected regions over it, and tells a Port
// when the consumer should re-render or navigate.
//
// Notifications are synchronous and are issued after the store mutation that
// caused them has completed, outside the controller's lock, so a Port may
// call back into the Controller.
package view

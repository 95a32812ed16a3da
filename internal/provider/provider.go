// Package provider defines the Provider interface and the attribute sources
// that feed device snapshots. Each provider owns a disjoint set of attribute
// keys and may fail independently of the others.
package provider

import (
	"context"
	"fmt"

	"github.com/Guliveer/devicescope/internal/models"
)

// Provider is the interface that all attribute sources must implement.
type Provider interface {
	// Name returns the unique identifier for this provider.
	Name() string

	// Keys lists every attribute key the provider may emit, fallback keys
	// included. The collector uses it to keep key namespaces disjoint.
	Keys() []string

	// Query gathers the provider's attributes.
	// The context allows for cancellation and timeout control.
	Query(ctx context.Context) (models.ProviderResult, error)

	// Fallback converts a failed Query into the entries shown in its place.
	Fallback(err error) models.ProviderResult

	// IsAvailable checks if this provider can run on the current platform.
	// Providers that return false will not be registered.
	IsAvailable() bool
}

// Error records which provider failed and why.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying cause for errors.Is and errors.As support.
func (e *Error) Unwrap() error { return e.Err }

// PanicError wraps a value recovered from a panicking provider.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

const unknown = "Unknown"

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Package tenant carries the ambient tenant identity for one logical unit of
// work. The values live on a context.Context, never in a process-wide
// variable, so concurrent requests can never share a slot. The package is a
// pure control plane: it never touches the database. Enforcement happens in
// the storage layer, which reads these values immediately before issuing
// each transaction and fails closed when they are absent.
package tenant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Sentinel errors for tenant context operations.
var (
	// ErrInvalidTenant is returned when a context is established with an
	// empty or malformed organization identifier.
	ErrInvalidTenant = errors.New("invalid tenant identifier")

	// ErrBypassReason is returned when bypass is requested without a reason.
	// Every bypass activation must be attributable.
	ErrBypassReason = errors.New("bypass reason is required")
)

type contextKey int

const (
	orgKey contextKey = iota
	bypassKey
)

// WithOrg returns a context carrying orgID as the active tenant for all
// storage operations issued under it. A nil UUID is rejected before any
// query can execute.
func WithOrg(ctx context.Context, orgID uuid.UUID) (context.Context, error) {
	if orgID == uuid.Nil {
		return ctx, fmt.Errorf("%w: org id must not be nil", ErrInvalidTenant)
	}
	return context.WithValue(ctx, orgKey, orgID), nil
}

// WithOrgString parses and validates orgID before delegating to WithOrg.
// This is the form trust boundaries (request handlers, job runners) should
// use when the identifier arrives as text.
func WithOrgString(ctx context.Context, orgID string) (context.Context, error) {
	id, err := uuid.Parse(strings.TrimSpace(orgID))
	if err != nil {
		return ctx, fmt.Errorf("%w: %q is not a well-formed org id", ErrInvalidTenant, orgID)
	}
	return WithOrg(ctx, id)
}

// ClearOrg returns a context with no active tenant. Clearing a context that
// has no tenant set is a no-op, not an error.
func ClearOrg(ctx context.Context) context.Context {
	if _, ok := OrgFromContext(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, orgKey, uuid.Nil)
}

// OrgFromContext returns the active tenant identifier, or false when no
// tenant is set. It never panics and never returns an error: "no context"
// is an expected state that the storage layer answers with empty results.
func OrgFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(orgKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, false
	}
	return id, true
}

// RunAs executes fn with orgID as the active tenant. The caller's own
// context is untouched on every exit path (normal return, error, or panic),
// because the tenant value lives only on the derived context passed to fn.
// This is the preferred interface; WithOrg/ClearOrg belong at trust
// boundaries only.
func RunAs(ctx context.Context, orgID uuid.UUID, fn func(ctx context.Context) error) error {
	scoped, err := WithOrg(ctx, orgID)
	if err != nil {
		return err
	}
	return fn(scoped)
}

// WithBypass returns a context under which the storage layer disables
// tenant filtering. reason is mandatory: the storage layer records it so
// every bypass activation is attributable.
func WithBypass(ctx context.Context, reason string) (context.Context, error) {
	if strings.TrimSpace(reason) == "" {
		return ctx, ErrBypassReason
	}
	return context.WithValue(ctx, bypassKey, reason), nil
}

// ClearBypass returns a context with bypass disabled. Idempotent.
func ClearBypass(ctx context.Context) context.Context {
	if _, ok := BypassFromContext(ctx); !ok {
		return ctx
	}
	return context.WithValue(ctx, bypassKey, "")
}

// BypassFromContext reports whether bypass is active, returning the reason
// it was activated with.
func BypassFromContext(ctx context.Context) (string, bool) {
	reason, ok := ctx.Value(bypassKey).(string)
	if !ok || reason == "" {
		return "", false
	}
	return reason, true
}

// RunBypass executes fn with tenant filtering disabled. Bypass is scoped to
// fn: the caller's context still obeys row policies after RunBypass
// returns, regardless of how fn exits.
func RunBypass(ctx context.Context, reason string, fn func(ctx context.Context) error) error {
	scoped, err := WithBypass(ctx, reason)
	if err != nil {
		return err
	}
	return fn(scoped)
}

// Package revocation tracks token ids that must be rejected before their
// natural expiry. The registry is injected where it is needed; callers that
// gate requests must treat a registry error as "revoked" so that an
// unavailable store never grants access.
package revocation

import "context"

type Registry interface {
	// Revoke inserts the jti into the revoked set. It is idempotent and
	// reports whether the id was newly inserted, which lets the refresh
	// flow make a refresh token strictly single-use.
	Revoke(ctx context.Context, jti string) (bool, error)

	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithSubject/FromContext for propagating the token subject via context

package auth

import (
	"context"
)

// subjectKey is the key type for storing the token subject in context.Context.
type subjectKey struct{}

// WithSubject returns a new context carrying the authenticated subject.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// FromContext retrieves the authenticated subject, returning "" if not present.
func FromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey{}).(string)
	return sub
}

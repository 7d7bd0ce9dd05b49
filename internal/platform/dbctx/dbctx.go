package dbctx

import (
	"context"

	"gorm.io/gorm"
)

// Context bundles a request context with an optional GORM transaction. A nil
// Tx means repositories use their own handle.
type Context struct {
	Ctx context.Context
	Tx  *gorm.DB
}

// With returns a copy of c carrying ctx, keeping the transaction.
func (c Context) With(ctx context.Context) Context {
	c.Ctx = ctx
	return c
}

package rewritecache

import (
	"context"

	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
)

// Tiered checks a fast local cache before a shared one and back-fills the
// local cache on shared hits.
type Tiered struct {
	local  domain.RewriteCache
	shared domain.RewriteCache
}

// NewTiered combines a local and a shared cache.
func NewTiered(local, shared domain.RewriteCache) *Tiered {
	return &Tiered{local: local, shared: shared}
}

func (t *Tiered) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok, err := t.local.Get(ctx, key); err == nil && ok {
		return v, true, nil
	}
	v, ok, err := t.shared.Get(ctx, key)
	if err != nil || !ok {
		return "", false, err
	}
	_ = t.local.Put(ctx, key, v)
	return v, true, nil
}

// Put writes through to both tiers. A shared-tier failure is returned after
// the local write.
func (t *Tiered) Put(ctx context.Context, key, value string) error {
	_ = t.local.Put(ctx, key, value)
	return t.shared.Put(ctx, key, value)
}

package cache

import (
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Roles caches messenger-id → role lookups so that every chat update
// does not hit the authorization table. Entries expire on TTL and are
// explicitly invalidated on any role change.
type Roles struct {
	inner *ttlcache.Cache[string, string]
}

func NewRoles(ttl time.Duration) *Roles {
	inner := ttlcache.New[string, string](
		ttlcache.WithTTL[string, string](ttl),
		ttlcache.WithDisableTouchOnHit[string, string](),
	)
	go inner.Start()
	return &Roles{inner: inner}
}

func (r *Roles) Get(messengerID string) (string, bool) {
	item := r.inner.Get(messengerID)
	if item == nil {
		return "", false
	}
	return item.Value(), true
}

func (r *Roles) Set(messengerID, role string) {
	r.inner.Set(messengerID, role, ttlcache.DefaultTTL)
}

func (r *Roles) Invalidate(messengerID string) {
	r.inner.Delete(messengerID)
}

// Stop ends the background eviction loop. Call on shutdown.
func (r *Roles) Stop() {
	r.inner.Stop()
}

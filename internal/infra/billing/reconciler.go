package billing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// StatusFetcher is the slice of the Stripe client the reconciler needs.
type StatusFetcher interface {
	SubscriptionStatus(ctx context.Context, subscriptionID string) (*SubscriptionInfo, error)
}

// Snapshot is one cached reconciliation result for a device.
type Snapshot struct {
	SubscriptionInfo
	CheckedAt time.Time `json:"checked_at"`
}

// Reconciler keeps a per-device cache of externally-verified billing
// status. Refreshes are fire-and-forget: readers may see a momentarily
// stale snapshot, and a failed fetch leaves the previous value in place.
// The usage gate never consults this cache; only UI-facing views do.
type Reconciler struct {
	fetch   StatusFetcher
	log     zerolog.Logger
	timeout time.Duration

	mu    sync.RWMutex
	cache map[string]Snapshot
}

func NewReconciler(fetch StatusFetcher, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		fetch:   fetch,
		log:     log,
		timeout: 10 * time.Second,
		cache:   make(map[string]Snapshot),
	}
}

// Cached returns the last known snapshot for the device, if any.
func (r *Reconciler) Cached(deviceID string) (Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.cache[deviceID]
	return snap, ok
}

// Refresh fetches the authoritative status and updates the cache. On
// fetch failure the cache keeps its previous value.
func (r *Reconciler) Refresh(ctx context.Context, deviceID, subscriptionID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	info, err := r.fetch.SubscriptionStatus(ctx, subscriptionID)
	if err != nil {
		r.log.Warn().Err(err).Str("device", deviceID).Msg("billing status refresh failed, keeping cached value")
		return err
	}

	r.mu.Lock()
	r.cache[deviceID] = Snapshot{SubscriptionInfo: *info, CheckedAt: time.Now()}
	r.mu.Unlock()
	return nil
}

// RefreshAsync kicks a background refresh and returns immediately.
func (r *Reconciler) RefreshAsync(deviceID, subscriptionID string) {
	go func() {
		_ = r.Refresh(context.Background(), deviceID, subscriptionID)
	}()
}

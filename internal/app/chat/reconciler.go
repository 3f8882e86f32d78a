package chat

import (
	"context"
	"time"

	"acaragraph/internal/pkg/logx"
	"acaragraph/internal/pkg/metrics"
)

// Default reconciler cadence: sweep every 30 seconds, demote rows that have
// not been seen for 60 seconds.
const (
	DefaultSweepInterval  = 30 * time.Second
	DefaultStaleThreshold = 60 * time.Second
)

// Reconciler periodically demotes stale persisted "online" rows to "away" and
// rebroadcasts presence from the in-memory registry. The registry stays
// authoritative for the live list; the sweep only fixes the persisted hints
// left behind by crashed or wedged connections.
type Reconciler struct {
	store     Store
	hub       *Hub
	interval  time.Duration
	threshold time.Duration
}

// NewReconciler creates a reconciler. Non-positive interval or threshold
// values fall back to the defaults.
func NewReconciler(store Store, hub *Hub, interval, threshold time.Duration) *Reconciler {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if threshold <= 0 {
		threshold = DefaultStaleThreshold
	}
	return &Reconciler{store: store, hub: hub, interval: interval, threshold: threshold}
}

// Run sweeps on a fixed ticker until the context is canceled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	logx.Info("Presence reconciler started",
		"interval", r.interval.String(),
		"threshold", r.threshold.String(),
	)

	for {
		select {
		case <-ctx.Done():
			logx.Info("Presence reconciler stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep performs one reconciliation pass. Presence is rebroadcast even when
// the store sweep fails, since the in-memory registry is still valid.
func (r *Reconciler) Sweep(ctx context.Context) {
	demoted, err := r.store.SweepStalePresence(ctx, r.threshold)
	if err != nil {
		metrics.PresenceSweepsTotal.WithLabelValues("error").Inc()
		logx.Error(err, "Presence sweep failed")
	} else {
		metrics.PresenceSweepsTotal.WithLabelValues("ok").Inc()
		if demoted > 0 {
			metrics.PresenceDemotionsTotal.Add(float64(demoted))
			logx.Info("Demoted stale users to away", "count", demoted)
		}
	}

	r.hub.BroadcastPresence()
}

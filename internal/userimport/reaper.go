package userimport

import (
	"context"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/storage"
	"github.com/faisallbhr/simple-hris/internal/user"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	reaperTimeout          = 4 * time.Minute
	defaultOutboxRetention = 7 * 24 * time.Hour
)

// OutboxPurger drops outbox rows that were already relayed.
type OutboxPurger interface {
	PurgeSent(ctx context.Context, before time.Time) (int64, error)
}

// Reaper removes uploads a crashed consumer never cleaned up, and relayed
// outbox rows past their retention.
type Reaper struct {
	store           storage.BlobStore
	outbox          OutboxPurger
	maxAge          time.Duration
	outboxRetention time.Duration
	now             func() time.Time
	logger          *zap.Logger
}

func NewReaper(store storage.BlobStore, outbox OutboxPurger, maxAge time.Duration, logger ...*zap.Logger) *Reaper {
	l := zap.L().Named("userimport.reaper")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("userimport.reaper")
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Reaper{
		store:           store,
		outbox:          outbox,
		maxAge:          maxAge,
		outboxRetention: defaultOutboxRetention,
		now:             time.Now,
		logger:          l,
	}
}

// Schedule registers the reaper on c. SkipIfStillRunning keeps a slow bucket
// listing from stacking runs.
func (r *Reaper) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	job := cron.NewChain(cron.SkipIfStillRunning(cron.DiscardLogger)).Then(cron.FuncJob(func() {
		ctx, cancel := context.WithTimeout(context.Background(), reaperTimeout)
		defer cancel()
		r.Run(ctx)
	}))
	return c.AddJob(spec, job)
}

// Run does one sweep and reports how many blobs were deleted.
func (r *Reaper) Run(ctx context.Context) int {
	threshold := r.now().Add(-r.maxAge)

	refs, err := r.store.ListOlderThan(ctx, user.ImportPrefix+"/", threshold)
	if err != nil {
		r.logger.Error("list stale imports failed", zap.Error(err))
	}

	deleted := 0
	for _, ref := range refs {
		ok, err := r.store.Delete(ctx, ref)
		if err != nil {
			r.logger.Warn("delete stale import failed", zap.String("file_ref", ref), zap.Error(err))
			continue
		}
		if ok {
			deleted++
		}
	}

	if r.outbox != nil {
		purged, err := r.outbox.PurgeSent(ctx, r.now().Add(-r.outboxRetention))
		if err != nil {
			r.logger.Error("purge outbox failed", zap.Error(err))
		} else if purged > 0 {
			r.logger.Info("outbox purged", zap.Int64("rows", purged))
		}
	}

	r.logger.Info("import reaper finished",
		zap.Time("threshold", threshold),
		zap.Int("stale", len(refs)),
		zap.Int("deleted", deleted),
	)
	return deleted
}

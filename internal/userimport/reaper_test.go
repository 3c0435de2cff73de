package userimport_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/faisallbhr/simple-hris/internal/userimport"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	before time.Time
	calls  int
	err    error
}

func (f *fakePurger) PurgeSent(ctx context.Context, before time.Time) (int64, error) {
	f.calls++
	f.before = before
	return 4, f.err
}

func TestReaper_Run(t *testing.T) {
	store := newFakeBlobStore(map[string][]byte{
		"imports/import_1_old.csv":  []byte("x"),
		"imports/import_2_old.xlsx": []byte("y"),
	})
	store.stale = []string{"imports/import_1_old.csv", "imports/import_2_old.xlsx", "imports/import_3_gone.csv"}
	purger := &fakePurger{}

	before := time.Now()
	deleted := userimport.NewReaper(store, purger, 2*time.Hour).Run(context.Background())

	assert.Equal(t, 2, deleted)
	assert.Equal(t, "imports/", store.listPrefix)
	assert.WithinDuration(t, before.Add(-2*time.Hour), store.listBefore, time.Minute)
	assert.Len(t, store.deleted, 3)
	assert.Empty(t, store.objects)
	assert.Equal(t, 1, purger.calls)
	assert.True(t, purger.before.Before(before.Add(-6*24*time.Hour)))
}

func TestReaper_RunPurgeFailureIsLogged(t *testing.T) {
	store := newFakeBlobStore(nil)
	purger := &fakePurger{err: errors.New("db down")}

	deleted := userimport.NewReaper(store, purger, time.Hour).Run(context.Background())

	assert.Zero(t, deleted)
	assert.Equal(t, 1, purger.calls)
}

func TestReaper_Schedule(t *testing.T) {
	c := cron.New()
	r := userimport.NewReaper(newFakeBlobStore(nil), nil, time.Hour)

	id, err := r.Schedule(c, "@every 1h")
	require.NoError(t, err)
	assert.NotZero(t, id)
	assert.Len(t, c.Entries(), 1)

	_, err = r.Schedule(c, "not a schedule")
	assert.Error(t, err)
}

package userimport_test

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/faisallbhr/simple-hris/internal/shared/storage"
	"github.com/faisallbhr/simple-hris/internal/user"
	"github.com/faisallbhr/simple-hris/internal/userimport"

	"github.com/google/uuid"
)

// fakeRepository keeps users in memory. Users created through it are visible
// to later lookups, like rows inserted earlier in the same transaction.
type fakeRepository struct {
	mu          sync.Mutex
	emails      map[string]bool
	roles       []user.Role
	departments map[string]uuid.UUID
	managers    map[string]uuid.UUID
	created     []*user.User
	createdRole map[uuid.UUID][]uuid.UUID

	createUserFn func(ctx context.Context, u *user.User, roleIDs []uuid.UUID) error
	listRolesFn  func(ctx context.Context) ([]user.Role, error)
	roleLookups  int
	deptLookups  int
	boundTx      *sql.Tx
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		emails: map[string]bool{},
		roles: []user.Role{
			{ID: uuid.New(), Name: "admin"},
			{ID: uuid.New(), Name: "employee"},
			{ID: uuid.New(), Name: "hr"},
		},
		departments: map[string]uuid.UUID{"Finance": uuid.New()},
		managers:    map[string]uuid.UUID{"Siti Rahma": uuid.New()},
		createdRole: map[uuid.UUID][]uuid.UUID{},
	}
}

func (f *fakeRepository) role(name string) user.Role {
	for _, r := range f.roles {
		if r.Name == name {
			return r
		}
	}
	return user.Role{}
}

func (f *fakeRepository) WithTx(tx *sql.Tx) userimport.Repository {
	f.boundTx = tx
	return f
}

func (f *fakeRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.emails[strings.ToLower(strings.TrimSpace(email))], nil
}

func (f *fakeRepository) ListRoles(ctx context.Context) ([]user.Role, error) {
	f.roleLookups++
	if f.listRolesFn != nil {
		return f.listRolesFn(ctx)
	}
	return f.roles, nil
}

func (f *fakeRepository) FindDepartmentIDByName(ctx context.Context, name string) (*uuid.UUID, error) {
	f.deptLookups++
	if id, ok := f.departments[name]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeRepository) FindManagerIDByName(ctx context.Context, name string) (*uuid.UUID, error) {
	if id, ok := f.managers[name]; ok {
		return &id, nil
	}
	return nil, nil
}

func (f *fakeRepository) CreateUser(ctx context.Context, u *user.User, roleIDs []uuid.UUID) error {
	if f.createUserFn != nil {
		if err := f.createUserFn(ctx, u, roleIDs); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails[u.Email] = true
	f.managers[u.Name] = u.ID
	f.created = append(f.created, u)
	f.createdRole[u.ID] = roleIDs
	return nil
}

type fakeBlobStore struct {
	objects    map[string][]byte
	deleted    []string
	stale      []string
	listPrefix string
	listBefore time.Time
}

func newFakeBlobStore(objects map[string][]byte) *fakeBlobStore {
	if objects == nil {
		objects = map[string][]byte{}
	}
	return &fakeBlobStore{objects: objects}
}

func (f *fakeBlobStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	f.objects[path] = data
	return path, nil
}

func (f *fakeBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	data, ok := f.objects[ref]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, ref string) (bool, error) {
	f.deleted = append(f.deleted, ref)
	_, ok := f.objects[ref]
	delete(f.objects, ref)
	return ok, nil
}

func (f *fakeBlobStore) Exists(ctx context.Context, ref string) (bool, error) {
	_, ok := f.objects[ref]
	return ok, nil
}

func (f *fakeBlobStore) ListOlderThan(ctx context.Context, prefix string, before time.Time) ([]string, error) {
	f.listPrefix = prefix
	f.listBefore = before
	return f.stale, nil
}

type published struct {
	channel string
	event   string
	payload userimport.Notification
}

type recordingPublisher struct {
	messages []published
}

func (r *recordingPublisher) Publish(ctx context.Context, channel, event string, payload any) error {
	n, _ := payload.(userimport.Notification)
	r.messages = append(r.messages, published{channel: channel, event: event, payload: n})
	return nil
}

type countingCache struct {
	invalidated int
}

func (c *countingCache) Invalidate(ctx context.Context) {
	c.invalidated++
}

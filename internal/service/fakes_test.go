package service

import (
	"context"
	"errors"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/taskboard/taskboard-go/internal/crypto"
	"github.com/taskboard/taskboard-go/internal/model"
	"github.com/taskboard/taskboard-go/internal/repository"
)

var errStore = errors.New("store unavailable")

// cheapHashParams keep argon2 fast in tests.
var cheapHashParams = crypto.HashParams{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  16,
	KeyLength:   32,
}

type memUserStore struct {
	mu      sync.Mutex
	users   map[ulid.ULID]model.User
	creates int
	// skipLookup hides existing users from GetByUsername to simulate a registration race.
	skipLookup bool
	failWith   error
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[ulid.ULID]model.User)}
}

func (s *memUserStore) GetByID(_ context.Context, id ulid.ULID) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *memUserStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	if s.skipLookup {
		return nil, repository.ErrNotFound
	}
	for _, u := range s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.ID = ulid.Make()
	s.users[user.ID] = *user
	return nil
}

type memProjectStore struct {
	mu       sync.Mutex
	projects map[ulid.ULID]model.Project
	saves    int
	deletes  int
	failSave error
}

func newMemProjectStore() *memProjectStore {
	return &memProjectStore{projects: make(map[ulid.ULID]model.Project)}
}

func (s *memProjectStore) add(owner ulid.ULID, name string) *model.Project {
	p := model.NewProject(owner, name)
	p.ID = ulid.Make()
	s.projects[p.ID] = *p
	return p
}

func (s *memProjectStore) GetByID(_ context.Context, id ulid.ULID) (*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Tasks = nil
	return &p, nil
}

func (s *memProjectStore) ListByOwner(_ context.Context, ownerID ulid.ULID) ([]*model.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Project
	for _, p := range s.projects {
		if p.OwnerID == ownerID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (s *memProjectStore) Save(_ context.Context, project *model.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failSave != nil {
		return s.failSave
	}
	if project.ID.IsZero() {
		project.ID = ulid.Make()
	}
	for _, t := range project.Tasks {
		t.ProjectID = project.ID
	}
	s.projects[project.ID] = *project
	return nil
}

func (s *memProjectStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if _, ok := s.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

type memTaskStore struct {
	mu       sync.Mutex
	order    []ulid.ULID
	tasks    map[ulid.ULID]model.Task
	saves    int
	deletes  int
	failList error
	failSave error
}

func newMemTaskStore() *memTaskStore {
	return &memTaskStore{tasks: make(map[ulid.ULID]model.Task)}
}

func (s *memTaskStore) GetByID(_ context.Context, id ulid.ULID) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (s *memTaskStore) ListByProject(_ context.Context, projectID ulid.ULID) ([]*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []*model.Task
	for _, id := range s.order {
		if t, ok := s.tasks[id]; ok && t.ProjectID == projectID {
			t := t
			out = append(out, &t)
		}
	}
	return out, nil
}

func (s *memTaskStore) Save(_ context.Context, task *model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if s.failSave != nil {
		return s.failSave
	}
	if task.ID.IsZero() {
		task.ID = ulid.Make()
	}
	if _, ok := s.tasks[task.ID]; !ok {
		s.order = append(s.order, task.ID)
	}
	s.tasks[task.ID] = *task
	return nil
}

func (s *memTaskStore) Delete(_ context.Context, id ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memTaskStore) DeleteByProject(_ context.Context, projectID ulid.ULID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deletes++
	for id, t := range s.tasks {
		if t.ProjectID == projectID {
			delete(s.tasks, id)
		}
	}
	return nil
}

// fakeTx runs fn directly and counts the units of work it was handed.
type fakeTx struct {
	calls int
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

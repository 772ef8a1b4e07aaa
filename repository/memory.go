package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cncdesign/cncbackend/models"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. Used by tests and for
// running the service without a database (DB_DRIVER=memory).
type MemoryStore struct {
	mu          sync.RWMutex
	seq         int64
	submissions map[string]memSubmission
	projects    map[string]memProject
	users       map[string]models.User

	now func() time.Time
}

type memSubmission struct {
	seq int64
	models.Submission
}

type memProject struct {
	seq int64
	models.Project
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		submissions: make(map[string]memSubmission),
		projects:    make(map[string]memProject),
		users:       make(map[string]models.User),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Stores exposes the memory store through the backend-neutral bundle.
func (m *MemoryStore) Stores() *Stores {
	return &Stores{
		Submissions: memorySubmissions{m},
		Projects:    memoryProjects{m},
		Users:       memoryUsers{m},
		Close:       func(context.Context) error { return nil },
	}
}

type memorySubmissions struct{ m *MemoryStore }

func (s memorySubmissions) Create(_ context.Context, sub *models.Submission) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := m.now()
	sub.ID = uuid.NewString()
	sub.CreatedAt = now
	sub.UpdatedAt = now
	m.submissions[sub.ID] = memSubmission{seq: m.seq, Submission: cloneSubmission(*sub)}
	return nil
}

func (s memorySubmissions) List(_ context.Context, f SubmissionFilter) ([]models.Submission, error) {
	m := s.m
	m.mu.RLock()
	rows := make([]memSubmission, 0, len(m.submissions))
	for _, r := range m.submissions {
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		rows = append(rows, r)
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]models.Submission, 0, len(rows))
	for _, r := range page(len(rows), f.ListOptions) {
		out = append(out, cloneSubmission(rows[r].Submission))
	}
	return out, nil
}

func (s memorySubmissions) Get(_ context.Context, id string) (*models.Submission, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sub := cloneSubmission(r.Submission)
	return &sub, nil
}

func (s memorySubmissions) UpdateStatus(_ context.Context, id string, status models.SubmissionStatus) (*models.Submission, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.submissions[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = m.now()
	m.submissions[id] = r
	sub := cloneSubmission(r.Submission)
	return &sub, nil
}

func (s memorySubmissions) Delete(_ context.Context, id string) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.submissions[id]; !ok {
		return ErrNotFound
	}
	delete(m.submissions, id)
	return nil
}

type memoryProjects struct{ m *MemoryStore }

func (s memoryProjects) Create(_ context.Context, p *models.Project) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	now := m.now()
	p.ID = uuid.NewString()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.projects[p.ID] = memProject{seq: m.seq, Project: cloneProject(*p)}
	return nil
}

func (s memoryProjects) List(_ context.Context, f ProjectFilter) ([]models.Project, error) {
	m := s.m
	m.mu.RLock()
	rows := make([]memProject, 0, len(m.projects))
	for _, r := range m.projects {
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.Featured != nil && r.Featured != *f.Featured {
			continue
		}
		rows = append(rows, r)
	}
	m.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
			return rows[i].CreatedAt.After(rows[j].CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	out := make([]models.Project, 0, len(rows))
	for _, r := range page(len(rows), f.ListOptions) {
		out = append(out, cloneProject(rows[r].Project))
	}
	return out, nil
}

func (s memoryProjects) Get(_ context.Context, id string) (*models.Project, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	p := cloneProject(r.Project)
	return &p, nil
}

func (s memoryProjects) Update(_ context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	patch.Apply(&r.Project)
	r.UpdatedAt = m.now()
	m.projects[id] = r
	p := cloneProject(r.Project)
	return &p, nil
}

func (s memoryProjects) Delete(_ context.Context, id string) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

type memoryUsers struct{ m *MemoryStore }

func (s memoryUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m := s.m
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s memoryUsers) EnsureUser(_ context.Context, u *models.User) (bool, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Email]; ok {
		return false, nil
	}
	now := m.now()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.Email] = *u
	return true, nil
}

func (s memoryUsers) UpdatePassword(_ context.Context, email, passwordHash string) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	u.UpdatedAt = m.now()
	m.users[email] = u
	return nil
}

// page returns the indexes of a sorted slice of length n selected by opts.
func page(n int, opts ListOptions) []int {
	start := n
	if opts.Skip >= 0 && opts.Skip < int64(n) {
		start = int(opts.Skip)
	}
	end := n
	if opts.Limit > 0 && opts.Limit < int64(n-start) {
		end = start + int(opts.Limit)
	}
	idx := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		idx = append(idx, i)
	}
	return idx
}

func cloneSubmission(s models.Submission) models.Submission {
	s.Images = cloneStrings(s.Images)
	s.Files = cloneStrings(s.Files)
	return s
}

func cloneProject(p models.Project) models.Project {
	p.Materials = cloneStrings(p.Materials)
	p.Images = cloneStrings(p.Images)
	if p.Dimensions != nil {
		d := *p.Dimensions
		p.Dimensions = &d
	}
	return p
}

func cloneStrings(in []string) []string {
	return append(make([]string, 0, len(in)), in...)
}

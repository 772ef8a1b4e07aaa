// Package repository persists submissions, projects and admin users.
//
// Three backends implement the same interfaces: MongoDB (default), Postgres
// through gorm, and an in-memory store used by tests and local runs. Stores
// assign identifiers and timestamps; callers never supply them on create.
package repository

import (
	"context"
	"errors"

	"github.com/cncdesign/cncbackend/models"
)

var ErrNotFound = errors.New("record not found")

// ListOptions narrows a list query. Zero values mean "no limit" and "no filter".
type ListOptions struct {
	Skip  int64
	Limit int64
}

type SubmissionFilter struct {
	ListOptions
	Status models.SubmissionStatus
}

type ProjectFilter struct {
	ListOptions
	Category string
	Featured *bool
}

type SubmissionStore interface {
	// Create inserts s and fills in its ID and timestamps.
	Create(ctx context.Context, s *models.Submission) error
	// List returns submissions newest first. An empty result is not an error.
	List(ctx context.Context, f SubmissionFilter) ([]models.Submission, error)
	Get(ctx context.Context, id string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, id string, status models.SubmissionStatus) (*models.Submission, error)
	// Delete removes exactly one submission or returns ErrNotFound.
	Delete(ctx context.Context, id string) error
}

type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	List(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Update(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error)
	Delete(ctx context.Context, id string) error
}

type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// EnsureUser inserts u unless a user with the same email exists.
	// It reports whether a new user was created.
	EnsureUser(ctx context.Context, u *models.User) (bool, error)
	UpdatePassword(ctx context.Context, email, passwordHash string) error
}

// Stores bundles the stores of one backend.
type Stores struct {
	Submissions SubmissionStore
	Projects    ProjectStore
	Users       UserStore
	Close       func(ctx context.Context) error
}

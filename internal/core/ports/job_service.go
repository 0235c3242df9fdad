package ports

import (
	"context"

	"github.com/jobnexus/jobboard/internal/core/domain"
)

// Page is a single page of a listing.
type Page[T any] struct {
	Items      []T
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// JobFilter carries the query parameters of the job listing.
type JobFilter struct {
	Search    string           // partial match on title or location
	Status    domain.JobStatus // empty = any
	CompanyID string
	Page      int // 1-based
	Limit     int // capped at 100 by the service
}

// JobInput holds the editable fields of a posting.
type JobInput struct {
	CompanyID   string
	Title       string
	Description string
	Location    string
	Salary      string
	Tags        []string
	Featured    bool
	Status      domain.JobStatus
}

// ApplyInput carries a candidate's application.
type ApplyInput struct {
	JobID       string
	CoverLetter string
	ResumeLink  string
}

// JobService defines the use cases around postings and applications.
type JobService interface {
	List(ctx context.Context, filter JobFilter) (*Page[*domain.Job], error)
	Get(ctx context.Context, id string) (*domain.Job, error)
	Create(ctx context.Context, actor *domain.User, in JobInput) (*domain.Job, error)
	Update(ctx context.Context, actor *domain.User, id string, in JobInput) (*domain.Job, error)
	Delete(ctx context.Context, actor *domain.User, id string) error

	Apply(ctx context.Context, userID string, in ApplyInput) (*domain.Application, error)
	MyApplications(ctx context.Context, userID string) ([]*domain.Application, error)
	Applicants(ctx context.Context, actor *domain.User, jobID string) ([]*domain.Application, error)
}

// CompanyInput holds the fields of a new company.
type CompanyInput struct {
	Name        string
	Website     string
	Logo        string
	Description string
}

// CompanyService defines company use cases.
type CompanyService interface {
	List(ctx context.Context) ([]*domain.Company, error)
	Create(ctx context.Context, actor *domain.User, in CompanyInput) (*domain.Company, error)
}

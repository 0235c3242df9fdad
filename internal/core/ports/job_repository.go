package ports

import (
	"context"

	"github.com/jobnexus/jobboard/internal/core/domain"
)

// JobRepository defines persistence operations for job postings.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) error
	FindByID(ctx context.Context, id string) (*domain.Job, error)
	Update(ctx context.Context, job *domain.Job) error
	Delete(ctx context.Context, id string) error
	// List returns a page of jobs matching filter and the total count.
	List(ctx context.Context, filter JobFilter) ([]*domain.Job, int64, error)
}

// CompanyRepository defines persistence operations for companies.
type CompanyRepository interface {
	Create(ctx context.Context, company *domain.Company) error
	FindByID(ctx context.Context, id string) (*domain.Company, error)
	List(ctx context.Context) ([]*domain.Company, error)
}

// ApplicationRepository defines persistence operations for applications.
// Create returns domain.ErrApplicationExists when the user already applied.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.Application) error
	ListByUser(ctx context.Context, userID string) ([]*domain.Application, error)
	ListByJob(ctx context.Context, jobID string) ([]*domain.Application, error)
}

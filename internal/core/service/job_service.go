package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

// JobService implements postings and applications.
type JobService struct {
	jobs         ports.JobRepository
	companies    ports.CompanyRepository
	applications ports.ApplicationRepository
	log          zerolog.Logger
}

func NewJobService(
	jobs ports.JobRepository,
	companies ports.CompanyRepository,
	applications ports.ApplicationRepository,
	log zerolog.Logger,
) *JobService {
	return &JobService{jobs: jobs, companies: companies, applications: applications, log: log}
}

// List returns a page of postings. Paging defaults to 20 rows and is capped at 100.
func (s *JobService) List(ctx context.Context, filter ports.JobFilter) (*ports.Page[*domain.Job], error) {
	filter.Page, filter.Limit = normalizePaging(filter.Page, filter.Limit)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}

	jobs, total, err := s.jobs.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return newPage(jobs, total, filter.Page, filter.Limit), nil
}

func (s *JobService) Get(ctx context.Context, id string) (*domain.Job, error) {
	return s.jobs.FindByID(ctx, id)
}

// Create publishes a posting for an existing company. New postings are active
// unless another status is given.
func (s *JobService) Create(ctx context.Context, actor *domain.User, in ports.JobInput) (*domain.Job, error) {
	if err := validateJobInput(&in); err != nil {
		return nil, err
	}
	if _, err := s.companies.FindByID(ctx, in.CompanyID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	job := &domain.Job{
		ID:        uuid.NewString(),
		PostedBy:  actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyJobInput(job, in)

	if err := s.jobs.Create(ctx, job); err != nil {
		s.log.Error().Err(err).Msg("failed to create job")
		return nil, err
	}
	s.log.Info().Str("job_id", job.ID).Str("posted_by", actor.ID).Msg("job created")
	return job, nil
}

// Update replaces the editable fields of a posting the actor manages.
func (s *JobService) Update(ctx context.Context, actor *domain.User, id string, in ports.JobInput) (*domain.Job, error) {
	if err := validateJobInput(&in); err != nil {
		return nil, err
	}
	job, err := s.managedJob(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if in.CompanyID != job.CompanyID {
		if _, err := s.companies.FindByID(ctx, in.CompanyID); err != nil {
			return nil, err
		}
	}

	applyJobInput(job, in)
	job.UpdatedAt = time.Now().UTC()
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// Delete removes a posting the actor manages.
func (s *JobService) Delete(ctx context.Context, actor *domain.User, id string) error {
	if _, err := s.managedJob(ctx, actor, id); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("job_id", id).Str("actor_id", actor.ID).Msg("job deleted")
	return nil
}

// Apply records userID's application to an active posting. Applying twice
// returns domain.ErrApplicationExists.
func (s *JobService) Apply(ctx context.Context, userID string, in ports.ApplyInput) (*domain.Application, error) {
	job, err := s.jobs.FindByID(ctx, in.JobID)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobActive {
		return nil, domain.ErrJobNotOpen
	}

	app := &domain.Application{
		ID:          uuid.NewString(),
		JobID:       job.ID,
		UserID:      userID,
		CoverLetter: strings.TrimSpace(in.CoverLetter),
		ResumeLink:  strings.TrimSpace(in.ResumeLink),
		Status:      domain.ApplicationSubmitted,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

func (s *JobService) MyApplications(ctx context.Context, userID string) ([]*domain.Application, error) {
	return s.applications.ListByUser(ctx, userID)
}

// Applicants lists the applications of a posting the actor manages.
func (s *JobService) Applicants(ctx context.Context, actor *domain.User, jobID string) ([]*domain.Application, error) {
	if _, err := s.managedJob(ctx, actor, jobID); err != nil {
		return nil, err
	}
	return s.applications.ListByJob(ctx, jobID)
}

func (s *JobService) managedJob(ctx context.Context, actor *domain.User, id string) (*domain.Job, error) {
	job, err := s.jobs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !job.CanBeManagedBy(actor) {
		return nil, domain.ErrForbidden
	}
	return job, nil
}

func validateJobInput(in *ports.JobInput) error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" || in.CompanyID == "" {
		return fmt.Errorf("%w: title and company are required", domain.ErrInvalidInput)
	}
	if in.Status == "" {
		in.Status = domain.JobActive
	}
	if !in.Status.Valid() {
		return domain.ErrInvalidStatus
	}
	return nil
}

func applyJobInput(job *domain.Job, in ports.JobInput) {
	job.CompanyID = in.CompanyID
	job.Title = in.Title
	job.Description = in.Description
	job.Location = in.Location
	job.Salary = in.Salary
	job.Tags = in.Tags
	if job.Tags == nil {
		job.Tags = []string{}
	}
	job.Featured = in.Featured
	job.Status = in.Status
}

// CompanyService implements company listing and creation.
type CompanyService struct {
	repo ports.CompanyRepository
	log  zerolog.Logger
}

func NewCompanyService(repo ports.CompanyRepository, log zerolog.Logger) *CompanyService {
	return &CompanyService{repo: repo, log: log}
}

func (s *CompanyService) List(ctx context.Context) ([]*domain.Company, error) {
	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	if companies == nil {
		companies = []*domain.Company{}
	}
	return companies, nil
}

func (s *CompanyService) Create(ctx context.Context, actor *domain.User, in ports.CompanyInput) (*domain.Company, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}

	company := &domain.Company{
		ID:          uuid.NewString(),
		Name:        name,
		Website:     in.Website,
		Logo:        in.Logo,
		Description: in.Description,
		OwnerID:     actor.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, company); err != nil {
		if errors.Is(err, domain.ErrCompanyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("create company: %w", err)
	}
	s.log.Info().Str("company_id", company.ID).Str("owner_id", actor.ID).Msg("company created")
	return company, nil
}

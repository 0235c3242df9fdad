package domain

import "time"

// JobStatus is the publication state of a job posting.
type JobStatus string

const (
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

// Valid reports whether s is a known job status.
func (s JobStatus) Valid() bool {
	switch s {
	case JobActive, JobPaused, JobClosed:
		return true
	}
	return false
}

// Job is a posting published by an employer on behalf of a company.
type Job struct {
	ID          string    `json:"id" bson:"_id"`
	CompanyID   string    `json:"companyId" bson:"company_id"`
	PostedBy    string    `json:"postedBy" bson:"posted_by"`
	Title       string    `json:"title" bson:"title"`
	Description string    `json:"description" bson:"description"`
	Location    string    `json:"location" bson:"location"`
	Salary      string    `json:"salary,omitempty" bson:"salary,omitempty"`
	Tags        []string  `json:"tags" bson:"tags"`
	Featured    bool      `json:"featured" bson:"featured"`
	Status      JobStatus `json:"status" bson:"status"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

// CanBeManagedBy reports whether u may edit or delete the posting:
// admins manage every job, employers only the ones they posted.
func (j *Job) CanBeManagedBy(u *User) bool {
	switch u.Role {
	case RoleAdmin:
		return true
	case RoleEmployer:
		return j.PostedBy == u.ID
	case RoleUser:
		return false
	}
	return false
}

// Company is an organisation that publishes jobs.
type Company struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Website     string    `json:"website,omitempty" bson:"website,omitempty"`
	Logo        string    `json:"logo,omitempty" bson:"logo,omitempty"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	OwnerID     string    `json:"ownerId" bson:"owner_id"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// ApplicationStatus tracks a candidate's application through review.
type ApplicationStatus string

const (
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationReviewing ApplicationStatus = "reviewing"
	ApplicationRejected  ApplicationStatus = "rejected"
	ApplicationHired     ApplicationStatus = "hired"
)

// Application links a candidate to a job they applied for.
type Application struct {
	ID          string            `json:"id" bson:"_id"`
	JobID       string            `json:"jobId" bson:"job_id"`
	UserID      string            `json:"userId" bson:"user_id"`
	CoverLetter string            `json:"coverLetter,omitempty" bson:"cover_letter,omitempty"`
	ResumeLink  string            `json:"resumeLink,omitempty" bson:"resume_link,omitempty"`
	Status      ApplicationStatus `json:"status" bson:"status"`
	CreatedAt   time.Time         `json:"createdAt" bson:"created_at"`
}

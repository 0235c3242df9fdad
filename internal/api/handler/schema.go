package handler

import "github.com/jobnexus/jobboard/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Message string `json:"message"`
}

// --- Auth ---

type registerRequest struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName"  validate:"required,max=100"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type updateProfileRequest struct {
	FirstName    *string `json:"firstName"    validate:"omitempty,max=100"`
	LastName     *string `json:"lastName"     validate:"omitempty,max=100"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,max=2048"`
}

type authResponse struct {
	Token string       `json:"token,omitempty"`
	User  *domain.User `json:"user"`
}

// --- Jobs ---

type jobRequest struct {
	CompanyID   string   `json:"companyId"   validate:"required"`
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"max=20000"`
	Location    string   `json:"location"    validate:"max=200"`
	Salary      string   `json:"salary"      validate:"max=100"`
	Tags        []string `json:"tags"        validate:"max=20,dive,max=40"`
	Featured    bool     `json:"featured"`
	Status      string   `json:"status"      validate:"omitempty,oneof=active paused closed"`
}

type applyRequest struct {
	CoverLetter string `json:"coverLetter" validate:"max=5000"`
	ResumeLink  string `json:"resumeLink"  validate:"omitempty,url"`
}

// pageResponse is the envelope of every paginated listing.
type pageResponse[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// --- Companies ---

type companyRequest struct {
	Name        string `json:"name"        validate:"required,max=200"`
	Website     string `json:"website"     validate:"omitempty,url"`
	Logo        string `json:"logo"        validate:"omitempty,url"`
	Description string `json:"description" validate:"max=5000"`
}

// --- Admin ---

type changeRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user employer admin"`
}

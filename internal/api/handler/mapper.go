package handler

import (
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

// --- Request → Service input ---

func toRegisterInput(req registerRequest) ports.RegisterInput {
	return ports.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
}

func toJobInput(req jobRequest) ports.JobInput {
	return ports.JobInput{
		CompanyID:   req.CompanyID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Salary:      req.Salary,
		Tags:        req.Tags,
		Featured:    req.Featured,
		Status:      domain.JobStatus(req.Status),
	}
}

func toCompanyInput(req companyRequest) ports.CompanyInput {
	return ports.CompanyInput{
		Name:        req.Name,
		Website:     req.Website,
		Logo:        req.Logo,
		Description: req.Description,
	}
}

// --- Service output → Response ---

func toPageResponse[T any](p *ports.Page[T]) pageResponse[T] {
	items := p.Items
	if items == nil {
		items = []T{}
	}
	return pageResponse[T]{
		Items:      items,
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

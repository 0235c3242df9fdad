package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobnexus/jobboard/internal/core/ports"
)

// CompanyHandler handles HTTP requests for companies.
type CompanyHandler struct {
	service ports.CompanyService
}

func NewCompanyHandler(service ports.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// List handles GET /api/companies.
//
// @Summary      List companies
// @Tags         companies
// @Produce      json
// @Success      200  {array}   domain.Company
// @Router       /api/companies [get]
func (h *CompanyHandler) List(c echo.Context) error {
	companies, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, companies)
}

// Create handles POST /api/companies.
//
// @Summary      Create a company
// @Tags         companies
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      companyRequest  true  "Company"
// @Success      201   {object}  domain.Company
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/companies [post]
func (h *CompanyHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req companyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	company, err := h.service.Create(c.Request().Context(), actor, toCompanyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, company)
}

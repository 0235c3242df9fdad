package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/jobnexus/jobboard/internal/api/metrics"
	"github.com/jobnexus/jobboard/internal/core/domain"
	"github.com/jobnexus/jobboard/internal/core/ports"
)

// JobHandler handles HTTP requests for postings and applications.
type JobHandler struct {
	service ports.JobService
}

func NewJobHandler(service ports.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// List handles GET /api/jobs.
//
// @Summary      List job postings
// @Tags         jobs
// @Produce      json
// @Param        search     query     string  false  "Partial match on title or location"
// @Param        status     query     string  false  "active, paused or closed"
// @Param        companyId  query     string  false  "Company id"
// @Param        page       query     int     false  "Page number (1-based)"
// @Param        limit      query     int     false  "Page size (max 100)"
// @Success      200        {object}  pageResponse[domain.Job]
// @Failure      400        {object}  errorResponse
// @Router       /api/jobs [get]
func (h *JobHandler) List(c echo.Context) error {
	page, err := intQuery(c, "page")
	if err != nil {
		return err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return err
	}

	result, err := h.service.List(c.Request().Context(), ports.JobFilter{
		Search:    c.QueryParam("search"),
		Status:    domain.JobStatus(c.QueryParam("status")),
		CompanyID: c.QueryParam("companyId"),
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageResponse(result))
}

// Get handles GET /api/jobs/:id.
//
// @Summary      Get a job posting
// @Tags         jobs
// @Produce      json
// @Param        id   path      string  true  "Job id"
// @Success      200  {object}  domain.Job
// @Failure      404  {object}  errorResponse
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) Get(c echo.Context) error {
	job, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

// Create handles POST /api/jobs.
//
// @Summary      Publish a job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      jobRequest  true  "Posting"
// @Success      201   {object}  domain.Job
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/jobs [post]
func (h *JobHandler) Create(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req jobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	job, err := h.service.Create(c.Request().Context(), actor, toJobInput(req))
	if err != nil {
		return err
	}
	metrics.JobsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, job)
}

// Update handles PUT /api/jobs/:id. Employers may only edit their own postings.
//
// @Summary      Update a job posting
// @Tags         jobs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string      true  "Job id"
// @Param        body  body      jobRequest  true  "Posting"
// @Success      200   {object}  domain.Job
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/jobs/{id} [put]
func (h *JobHandler) Update(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req jobRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	job, err := h.service.Update(c.Request().Context(), actor, c.Param("id"), toJobInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, job)
}

// Delete handles DELETE /api/jobs/:id.
//
// @Summary      Delete a job posting
// @Tags         jobs
// @Security     BearerAuth
// @Param        id   path  string  true  "Job id"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/jobs/{id} [delete]
func (h *JobHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Apply handles POST /api/jobs/:id/applications.
//
// @Summary      Apply to a job
// @Tags         applications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string        true  "Job id"
// @Param        body  body      applyRequest  true  "Application"
// @Success      201   {object}  domain.Application
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/jobs/{id}/applications [post]
func (h *JobHandler) Apply(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req applyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	app, err := h.service.Apply(c.Request().Context(), userID, ports.ApplyInput{
		JobID:       c.Param("id"),
		CoverLetter: req.CoverLetter,
		ResumeLink:  req.ResumeLink,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, app)
}

// MyApplications handles GET /api/applications/mine.
//
// @Summary      List own applications
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Application
// @Failure      401  {object}  errorResponse
// @Router       /api/applications/mine [get]
func (h *JobHandler) MyApplications(c echo.Context) error {
	userID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	apps, err := h.service.MyApplications(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	if apps == nil {
		apps = []*domain.Application{}
	}
	return c.JSON(http.StatusOK, apps)
}

// Applicants handles GET /api/jobs/:id/applications.
//
// @Summary      List applications to a posting
// @Tags         applications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job id"
// @Success      200  {array}   domain.Application
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/jobs/{id}/applications [get]
func (h *JobHandler) Applicants(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	apps, err := h.service.Applicants(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return err
	}
	if apps == nil {
		apps = []*domain.Application{}
	}
	return c.JSON(http.StatusOK, apps)
}

func intQuery(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" must be a non-negative integer")
	}
	return n, nil
}

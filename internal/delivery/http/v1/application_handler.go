package v1

import (
	"net/http"

	"scholarship-backend/internal/delivery/http/middleware"
	"scholarship-backend/internal/delivery/http/response"
	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ApplicationHandler struct {
	applicationUC domain.ApplicationUsecase
}

// NewApplicationHandler registers application routes. applyLimit throttles submissions.
func NewApplicationHandler(r *gin.RouterGroup, applicationUC domain.ApplicationUsecase, applyLimit gin.HandlerFunc) {
	handler := &ApplicationHandler{applicationUC: applicationUC}
	student := middleware.RequireRole(domain.RoleStudent)
	staff := middleware.RequireRole(domain.RoleSocial, domain.RoleAdmin)

	// Student routes
	applications := r.Group("/applications")
	{
		applications.POST("", student, applyLimit, handler.Apply)
		applications.GET("/history", student, handler.GetMyHistory)
		applications.GET("/:id", handler.GetDetail)
	}

	// Staff routes
	r.GET("/students/:studentId/applications/:year", staff, handler.GetStudentYear)
}

// Apply godoc
// @Summary      Apply to the open call
// @Description  Submit an application with up to three courses (student only)
// @Tags         applications
// @Accept       json
// @Produce      json
// @Param        body  body      domain.ApplyRequest  true  "Application data"
// @Success      201   {object}  response.Response{data=domain.Application}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      404   {object}  response.Response
// @Failure      429   {object}  response.Response
// @Router       /applications [post]
// @Security     BearerAuth
func (h *ApplicationHandler) Apply(c *gin.Context) {
	// 1. Get actor from context
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	// 2. Bind request
	var req domain.ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	// 3. Submit
	app, err := h.applicationUC.Apply(c.Request.Context(), actor, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Application submitted", app)
}

// GetMyHistory godoc
// @Summary      My applications of a year
// @Tags         applications
// @Produce      json
// @Param        year  query     int  true  "Year"
// @Success      200   {object}  response.Response{data=[]domain.Application}
// @Failure      400   {object}  response.Response
// @Router       /applications/history [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetMyHistory(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	year, ok := yearValue(c, c.Query("year"))
	if !ok {
		return
	}

	apps, err := h.applicationUC.GetMyHistory(c.Request.Context(), actor, year)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applications retrieved", apps)
}

// GetDetail godoc
// @Summary      Get an application
// @Description  Students can only read their own applications
// @Tags         applications
// @Produce      json
// @Param        id   path      int  true  "Application ID"
// @Success      200  {object}  response.Response{data=domain.Application}
// @Failure      404  {object}  response.Response
// @Router       /applications/{id} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetDetail(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id", "application ID")
	if !ok {
		return
	}

	app, err := h.applicationUC.GetApplication(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Application retrieved", app)
}

// GetStudentYear godoc
// @Summary      A student's applications of a year
// @Description  Applications and scholarship count of one student (staff only)
// @Tags         applications
// @Produce      json
// @Param        studentId  path      string  true  "Student ID"
// @Param        year       path      int     true  "Year"
// @Success      200        {object}  response.Response{data=domain.StudentYear}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /students/{studentId}/applications/{year} [get]
// @Security     BearerAuth
func (h *ApplicationHandler) GetStudentYear(c *gin.Context) {
	studentID, err := uuid.Parse(c.Param("studentId"))
	if err != nil {
		c.Error(apperror.BadRequest("Invalid student ID"))
		return
	}
	year, ok := yearValue(c, c.Param("year"))
	if !ok {
		return
	}

	record, err := h.applicationUC.GetStudentYear(c.Request.Context(), studentID, year)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Student record retrieved", record)
}

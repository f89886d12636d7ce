package v1

import (
	"net/http"

	"scholarship-backend/internal/delivery/http/middleware"
	"scholarship-backend/internal/delivery/http/response"
	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type CallHandler struct {
	callUC domain.CallUsecase
}

// NewCallHandler registers call routes
func NewCallHandler(r *gin.RouterGroup, callUC domain.CallUsecase) {
	handler := &CallHandler{callUC: callUC}
	staff := middleware.RequireRole(domain.RoleSocial, domain.RoleAdmin)

	calls := r.Group("/calls")
	{
		// Any authenticated user
		calls.GET("/open", handler.GetOpen)
		calls.GET("/history", handler.GetHistory)

		// Staff only
		calls.POST("", staff, handler.Create)
		calls.GET("/:id", staff, handler.GetDetail)
		calls.PATCH("/:id/reject", staff, handler.Reject)
		calls.GET("/:id/applicants", staff, handler.ListApplicants)
	}
}

// Create godoc
// @Summary      Schedule a call
// @Description  Register a new scholarship call in SCHEDULED status (staff only)
// @Tags         calls
// @Accept       json
// @Produce      json
// @Param        call  body      domain.CreateCallRequest  true  "Call data"
// @Success      201   {object}  response.Response{data=domain.RegisteredCall}
// @Failure      400   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /calls [post]
// @Security     BearerAuth
func (h *CallHandler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req domain.CreateCallRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	registered, err := h.callUC.CreateCall(c.Request.Context(), actor, req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Call scheduled", registered)
}

// GetOpen godoc
// @Summary      Get the open call
// @Tags         calls
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Call}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /calls/open [get]
// @Security     BearerAuth
func (h *CallHandler) GetOpen(c *gin.Context) {
	call, err := h.callUC.GetOpenCall(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Open call retrieved", call)
}

// GetHistory godoc
// @Summary      List calls of a year
// @Description  Calls whose start date falls in the given year, newest first
// @Tags         calls
// @Produce      json
// @Param        year  query     int  true  "Year"
// @Success      200   {object}  response.Response{data=[]domain.Call}
// @Failure      400   {object}  response.Response
// @Router       /calls/history [get]
// @Security     BearerAuth
func (h *CallHandler) GetHistory(c *gin.Context) {
	year, ok := yearValue(c, c.Query("year"))
	if !ok {
		return
	}

	calls, err := h.callUC.GetCallHistory(c.Request.Context(), year)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Call history retrieved", calls)
}

// GetDetail godoc
// @Summary      Call report
// @Description  Applicant count, acceptance and enrollment rates and top rankings (staff only)
// @Tags         calls
// @Produce      json
// @Param        id   path      int  true  "Call ID"
// @Success      200  {object}  response.Response{data=domain.CallDetail}
// @Failure      404  {object}  response.Response
// @Router       /calls/{id} [get]
// @Security     BearerAuth
func (h *CallHandler) GetDetail(c *gin.Context) {
	id, ok := int64Param(c, "id", "call ID")
	if !ok {
		return
	}

	detail, err := h.callUC.GetCallDetail(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Call detail retrieved", detail)
}

// Reject godoc
// @Summary      Reject a scheduled call
// @Tags         calls
// @Produce      json
// @Param        id   path      int  true  "Call ID"
// @Success      200  {object}  response.Response{data=domain.Call}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /calls/{id}/reject [patch]
// @Security     BearerAuth
func (h *CallHandler) Reject(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, ok := int64Param(c, "id", "call ID")
	if !ok {
		return
	}

	call, err := h.callUC.RejectCall(c.Request.Context(), actor, id)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Call rejected", call)
}

// ListApplicants godoc
// @Summary      List applicants of a call
// @Tags         calls
// @Produce      json
// @Param        id         path      int     true   "Call ID"
// @Param        page       query     int     false  "Page number"        default(1)
// @Param        page_size  query     int     false  "Items per page"     default(10)
// @Param        sort_by    query     string  false  "submitted_date, overall_score or accepted"
// @Param        desc       query     bool    false  "Sort descending"
// @Success      200        {object}  response.Response{data=domain.PaginatedResult[domain.Applicant]}
// @Failure      400        {object}  response.Response
// @Failure      404        {object}  response.Response
// @Router       /calls/{id}/applicants [get]
// @Security     BearerAuth
func (h *CallHandler) ListApplicants(c *gin.Context) {
	id, ok := int64Param(c, "id", "call ID")
	if !ok {
		return
	}

	var q domain.ApplicantQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.Error(apperror.BadRequest("Invalid query parameters"))
		return
	}

	page, err := h.callUC.ListApplicants(c.Request.Context(), id, q)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Applicants retrieved", page)
}

package v1

import (
	"strconv"

	"scholarship-backend/internal/delivery/http/middleware"
	"scholarship-backend/internal/domain"
	"scholarship-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

func actorOrAbort(c *gin.Context) (domain.Actor, bool) {
	actor, ok := middleware.ActorFrom(c)
	if !ok {
		c.Error(apperror.Unauthorized("User not authenticated"))
		return domain.Actor{}, false
	}
	return actor, true
}

func int64Param(c *gin.Context, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		c.Error(apperror.BadRequest("Invalid " + label))
		return 0, false
	}
	return id, true
}

func yearValue(c *gin.Context, raw string) (int, bool) {
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1 {
		c.Error(apperror.BadRequest("year must be a positive number"))
		return 0, false
	}
	return year, true
}

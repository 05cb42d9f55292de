package controllers

import (
	"net/http"

	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// requester reads the identity set by the JWT middleware, answering 401 when it is missing.
func requester(c *gin.Context) (role.Requester, bool) {
	r, ok := authorization.RequesterFromContext(c)
	if !ok {
		fail(c, util.Unauthorized(util.AUTHORIZATION_HEADER_REQUIRED))
	}
	return r, ok
}

func fail(c *gin.Context, err error) {
	status := util.StatusCode(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	}
	c.AbortWithStatusJSON(status, util.FailedResponse(err))
}

/*
* Bind and validate the body
* Binding failures become validation errors
 */
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, util.BindError(err))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, dst any) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		fail(c, util.Validation(util.INVALID_PAGINATION))
		return false
	}
	return true
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, util.SuccessResponse(data))
}

func created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, util.SuccessResponse(data))
}

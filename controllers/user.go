package controllers

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/services"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
)

type UserService interface {
	Create(ctx context.Context, requester role.Requester, in models.UserInput) (*models.User, error)
	Get(ctx context.Context, requester role.Requester, id string) (*models.User, error)
	ListDoctors(ctx context.Context, requester role.Requester, q services.ListDoctorsQuery) (util.Page[models.User], error)
	Update(ctx context.Context, requester role.Requester, id string, patch models.UserPatch) (*models.User, error)
	VerifyDoctor(ctx context.Context, requester role.Requester, id string) (*models.User, error)
}

type UserController struct {
	users UserService
}

func User(router gin.IRouter, users UserService) {
	ctrl := &UserController{users: users}
	user := router.Group("/users")
	{
		user.POST("", authorization.Authorize(role.ADMIN), ctrl.CreateUser)
		user.GET("/doctors", ctrl.FetchAllDoctors)
		user.GET("/:id", ctrl.FetchUser)
		user.PATCH("/:id", ctrl.UpdateUser)
		user.PATCH("/:id/verify", authorization.Authorize(role.ADMIN), ctrl.VerifyDoctor)
	}
}

func (ctrl *UserController) CreateUser(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var in models.UserInput
	if !bindJSON(c, &in) {
		return
	}
	user, err := ctrl.users.Create(c.Request.Context(), r, in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, user)
}

func (ctrl *UserController) FetchAllDoctors(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var q services.ListDoctorsQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := ctrl.users.ListDoctors(c.Request.Context(), r, q)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page)
}

func (ctrl *UserController) FetchUser(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	user, err := ctrl.users.Get(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, user)
}

func (ctrl *UserController) UpdateUser(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var patch models.UserPatch
	if !bindJSON(c, &patch) {
		return
	}
	user, err := ctrl.users.Update(c.Request.Context(), r, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, user)
}

func (ctrl *UserController) VerifyDoctor(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	user, err := ctrl.users.VerifyDoctor(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, user)
}

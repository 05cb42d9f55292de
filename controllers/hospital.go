package controllers

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
)

type HospitalService interface {
	Create(ctx context.Context, requester role.Requester, in models.HospitalInput) (*models.Hospital, error)
	Update(ctx context.Context, requester role.Requester, id string, patch models.HospitalPatch) (*models.Hospital, error)
	Get(ctx context.Context, id string) (*models.Hospital, error)
	GetBySlug(ctx context.Context, slug string) (*models.Hospital, error)
	List(ctx context.Context, page, limit int64) (util.Page[models.Hospital], error)
}

type HospitalController struct {
	hospitals HospitalService
}

type pageQuery struct {
	Page  int64 `form:"page"`
	Limit int64 `form:"limit"`
}

func Hospital(router gin.IRouter, hospitals HospitalService) {
	ctrl := &HospitalController{hospitals: hospitals}
	hospital := router.Group("/hospitals")
	{
		hospital.POST("", authorization.Authorize(role.ADMIN), ctrl.HospitalCreate)
		hospital.PATCH("/:id", authorization.Authorize(role.ADMIN), ctrl.UpdateHospital)
		hospital.GET("", ctrl.FetchAllHospital)
		hospital.GET("/slug/:slug", ctrl.FetchHospitalBySlug)
		hospital.GET("/:id", ctrl.FetchHospital)
	}
}

func (ctrl *HospitalController) HospitalCreate(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var in models.HospitalInput
	if !bindJSON(c, &in) {
		return
	}
	hospital, err := ctrl.hospitals.Create(c.Request.Context(), r, in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, hospital)
}

func (ctrl *HospitalController) UpdateHospital(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var patch models.HospitalPatch
	if !bindJSON(c, &patch) {
		return
	}
	hospital, err := ctrl.hospitals.Update(c.Request.Context(), r, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, hospital)
}

func (ctrl *HospitalController) FetchHospital(c *gin.Context) {
	hospital, err := ctrl.hospitals.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, hospital)
}

func (ctrl *HospitalController) FetchHospitalBySlug(c *gin.Context) {
	hospital, err := ctrl.hospitals.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, hospital)
}

func (ctrl *HospitalController) FetchAllHospital(c *gin.Context) {
	var q pageQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := ctrl.hospitals.List(c.Request.Context(), q.Page, q.Limit)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page)
}

package controllers

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/services"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
)

type HealthRecordService interface {
	Create(ctx context.Context, requester role.Requester, in models.HealthRecordInput) (*models.HealthRecord, error)
	CreateFromAppointment(ctx context.Context, requester role.Requester, appointmentID string, in models.HealthRecordInput) (*models.HealthRecord, error)
	Get(ctx context.Context, requester role.Requester, id string) (*models.HealthRecord, error)
	List(ctx context.Context, requester role.Requester, q services.ListHealthRecordsQuery) (util.Page[models.HealthRecord], error)
	Update(ctx context.Context, requester role.Requester, id string, patch models.HealthRecordPatch) (*models.HealthRecord, error)
	Delete(ctx context.Context, requester role.Requester, id string) (*models.HealthRecord, error)
}

type HealthRecordController struct {
	records HealthRecordService
}

func HealthRecord(router gin.IRouter, records HealthRecordService) {
	ctrl := &HealthRecordController{records: records}
	healthRecord := router.Group("/health-records")
	{
		healthRecord.POST("", ctrl.CreateHealthRecord)
		healthRecord.GET("", ctrl.FetchAllHealthRecords)
		healthRecord.GET("/:id", ctrl.FetchHealthRecord)
		healthRecord.PATCH("/:id", ctrl.UpdateHealthRecord)
		healthRecord.DELETE("/:id", ctrl.DeleteHealthRecord)
	}
}

func (ctrl *HealthRecordController) CreateHealthRecord(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var in models.HealthRecordInput
	if !bindJSON(c, &in) {
		return
	}
	record, err := ctrl.records.Create(c.Request.Context(), r, in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, record)
}

func (ctrl *HealthRecordController) FetchAllHealthRecords(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var q services.ListHealthRecordsQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := ctrl.records.List(c.Request.Context(), r, q)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page)
}

func (ctrl *HealthRecordController) FetchHealthRecord(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	record, err := ctrl.records.Get(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, record)
}

func (ctrl *HealthRecordController) UpdateHealthRecord(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var patch models.HealthRecordPatch
	if !bindJSON(c, &patch) {
		return
	}
	record, err := ctrl.records.Update(c.Request.Context(), r, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, record)
}

// DeleteHealthRecord soft-deletes; the record is returned with status Deleted.
func (ctrl *HealthRecordController) DeleteHealthRecord(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	record, err := ctrl.records.Delete(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, record)
}

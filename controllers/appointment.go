package controllers

import (
	"context"
	"iter"
	"slices"

	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/services"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
)

type AppointmentService interface {
	Create(ctx context.Context, requester role.Requester, in models.AppointmentInput) (*models.Appointment, error)
	Get(ctx context.Context, requester role.Requester, id string) (*models.Appointment, error)
	List(ctx context.Context, requester role.Requester, q services.ListAppointmentsQuery) (util.Page[models.Appointment], error)
	Update(ctx context.Context, requester role.Requester, id string, patch models.AppointmentPatch) (*models.Appointment, error)
	Cancel(ctx context.Context, requester role.Requester, id, reason string) (*models.Appointment, error)
	Confirm(ctx context.Context, requester role.Requester, id string) (*models.Appointment, error)
	Complete(ctx context.Context, requester role.Requester, id string) (*models.Appointment, error)
	AvailableSlots(ctx context.Context, doctorID, date, consultationType string) (iter.Seq[models.Slot], error)
}

type AppointmentController struct {
	appointments AppointmentService
	records      HealthRecordService
}

func Appointment(router gin.IRouter, appointments AppointmentService, records HealthRecordService) {
	ctrl := &AppointmentController{appointments: appointments, records: records}
	appointment := router.Group("/appointments")
	{
		appointment.POST("", ctrl.CreateAppointment)
		appointment.GET("", ctrl.FetchAllAppointments)
		appointment.GET("/slots", ctrl.FetchAvailableSlots)
		appointment.GET("/:id", ctrl.FetchAppointment)
		appointment.PATCH("/:id", ctrl.UpdateAppointment)
		appointment.PATCH("/:id/cancel", ctrl.CancelAppointment)
		appointment.PATCH("/:id/confirm", ctrl.ConfirmAppointment)
		appointment.PATCH("/:id/complete", ctrl.CompleteAppointment)
		appointment.POST("/:id/health-record", ctrl.CreateHealthRecordFromAppointment)
	}
}

/*
* Bind JSON
* And pass to the service with the requester
 */
func (ctrl *AppointmentController) CreateAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var in models.AppointmentInput
	if !bindJSON(c, &in) {
		return
	}
	appointment, err := ctrl.appointments.Create(c.Request.Context(), r, in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, appointment)
}

func (ctrl *AppointmentController) FetchAllAppointments(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var q services.ListAppointmentsQuery
	if !bindQuery(c, &q) {
		return
	}
	page, err := ctrl.appointments.List(c.Request.Context(), r, q)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, page)
}

/*
* doctorId, date and consultationType come from the query string
* Collect the free slots into the response
 */
func (ctrl *AppointmentController) FetchAvailableSlots(c *gin.Context) {
	if _, ok := requester(c); !ok {
		return
	}
	slots, err := ctrl.appointments.AvailableSlots(c.Request.Context(),
		c.Query("doctorId"), c.Query("date"), c.Query("consultationType"))
	if err != nil {
		fail(c, err)
		return
	}
	free := slices.Collect(slots)
	if free == nil {
		free = []models.Slot{}
	}
	respondOK(c, free)
}

func (ctrl *AppointmentController) FetchAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	appointment, err := ctrl.appointments.Get(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, appointment)
}

/*
* Get id from param
* Bind the allow-listed patch
* Pass to the service
 */
func (ctrl *AppointmentController) UpdateAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var patch models.AppointmentPatch
	if !bindJSON(c, &patch) {
		return
	}
	appointment, err := ctrl.appointments.Update(c.Request.Context(), r, c.Param("id"), patch)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, appointment)
}

// CancelAppointment accepts an optional {"reason": "..."} body.
func (ctrl *AppointmentController) CancelAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var in models.CancelInput
	if c.Request.ContentLength > 0 && !bindJSON(c, &in) {
		return
	}
	appointment, err := ctrl.appointments.Cancel(c.Request.Context(), r, c.Param("id"), in.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, appointment)
}

func (ctrl *AppointmentController) ConfirmAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	appointment, err := ctrl.appointments.Confirm(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, appointment)
}

func (ctrl *AppointmentController) CompleteAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	appointment, err := ctrl.appointments.Complete(c.Request.Context(), r, c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, appointment)
}

func (ctrl *AppointmentController) CreateHealthRecordFromAppointment(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	var in models.HealthRecordInput
	if !bindJSON(c, &in) {
		return
	}
	record, err := ctrl.records.CreateFromAppointment(c.Request.Context(), r, c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, record)
}

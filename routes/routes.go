package routes

import (
	"net/http"

	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/controllers"
	"github.com/Aman-ydav/CareSync-sub000/metrics"
	"github.com/Aman-ydav/CareSync-sub000/services"

	"github.com/gin-gonic/gin"
)

const APIPrefix = "/api/v1"

func Routes(r *gin.Engine, jwtSecret string, svcs *services.Services, m *metrics.Metrics) {

	//public
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	//privateroutes
	api := r.Group(APIPrefix, authorization.JWTAuth(jwtSecret))
	controllers.Appointment(api, svcs.Appointments, svcs.HealthRecords)
	controllers.HealthRecord(api, svcs.HealthRecords)
	controllers.Hospital(api, svcs.Hospitals)
	controllers.User(api, svcs.Users)
	controllers.Dashboard(api, svcs.Stats, svcs.Assistant)
}

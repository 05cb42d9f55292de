package controllers

import (
	"context"

	"github.com/Aman-ydav/CareSync-sub000/config/authorization"
	"github.com/Aman-ydav/CareSync-sub000/models"
	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/services"

	"github.com/gin-gonic/gin"
)

type StatsService interface {
	Get(ctx context.Context, requester role.Requester) (*models.Stats, error)
}

type AssistantService interface {
	Chat(ctx context.Context, message string, history []services.ChatTurn) (string, error)
	ImproveText(ctx context.Context, text string) (string, error)
}

type chatRequest struct {
	Message string              `json:"message" binding:"required"`
	History []services.ChatTurn `json:"history" binding:"omitempty,max=20,dive"`
}

type improveRequest struct {
	Text string `json:"text" binding:"required"`
}

type DashboardController struct {
	stats     StatsService
	assistant AssistantService
}

func Dashboard(router gin.IRouter, stats StatsService, assistant AssistantService) {
	ctrl := &DashboardController{stats: stats, assistant: assistant}
	router.GET("/stats", authorization.Authorize(role.ADMIN), ctrl.FetchStats)
	assist := router.Group("/assistant")
	{
		assist.POST("/chat", ctrl.Chat)
		assist.POST("/improve", ctrl.ImproveText)
	}
}

func (ctrl *DashboardController) FetchStats(c *gin.Context) {
	r, ok := requester(c)
	if !ok {
		return
	}
	stats, err := ctrl.stats.Get(c.Request.Context(), r)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, stats)
}

func (ctrl *DashboardController) Chat(c *gin.Context) {
	var in chatRequest
	if !bindJSON(c, &in) {
		return
	}
	reply, err := ctrl.assistant.Chat(c.Request.Context(), in.Message, in.History)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"reply": reply})
}

func (ctrl *DashboardController) ImproveText(c *gin.Context) {
	var in improveRequest
	if !bindJSON(c, &in) {
		return
	}
	improved, err := ctrl.assistant.ImproveText(c.Request.Context(), in.Text)
	if err != nil {
		fail(c, err)
		return
	}
	respondOK(c, gin.H{"text": improved})
}

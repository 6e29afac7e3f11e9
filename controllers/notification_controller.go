package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/the-y0gi/Go-Apply-sub000/services"
)

type NotificationController struct {
	Notifications *services.NotificationService
}

// GET /api/notifications/me
func (ctl *NotificationController) GetMine(c *gin.Context) {
	notis, err := ctl.Notifications.ListByUser(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot fetch notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(notis), "data": notis})
}

// PUT /api/notifications/:id/read
func (ctl *NotificationController) MarkRead(c *gin.Context) {
	if err := ctl.Notifications.MarkRead(c.GetString("user_id"), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot update notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

// PUT /api/notifications/read-all
func (ctl *NotificationController) MarkAllRead(c *gin.Context) {
	if err := ctl.Notifications.MarkAllRead(c.GetString("user_id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot update notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "all marked as read"})
}

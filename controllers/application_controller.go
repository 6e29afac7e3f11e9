package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/the-y0gi/Go-Apply-sub000/models"
	"github.com/the-y0gi/Go-Apply-sub000/services"
)

type ApplicationController struct {
	Apps *services.ApplicationService
	Docs *services.DocumentService
}

type CreateApplicationInput struct {
	UniversityID string            `json:"university_id" binding:"required"`
	ProgramID    string            `json:"program_id" binding:"required"`
	Intakes      []services.Intake `json:"intakes" binding:"required,min=1"`
}

// POST /api/applications
func (ctl *ApplicationController) Create(c *gin.Context) {
	var input CreateApplicationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := ctl.Apps.Create(c.Request.Context(), c.GetString("user_id"), input.UniversityID, input.ProgramID, input.Intakes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": app})
}

// GET /api/applications
func (ctl *ApplicationController) List(c *gin.Context) {
	apps, err := ctl.Apps.ListByUser(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(apps), "data": apps})
}

// GET /api/applications/:id
func (ctl *ApplicationController) Get(c *gin.Context) {
	app, err := ctl.Apps.Get(c.Request.Context(), c.Param("id"), c.GetString("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": app})
}

// DELETE /api/applications/:id
func (ctl *ApplicationController) Delete(c *gin.Context) {
	if err := ctl.Apps.Delete(c.Request.Context(), c.Param("id"), c.GetString("user_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "application deleted"})
}

// GET /api/applications/:id/documents/status
func (ctl *ApplicationController) DocumentStatus(c *gin.Context) {
	view, err := ctl.Docs.Status(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

// POST /api/applications/:id/documents/complete
func (ctl *ApplicationController) CompleteDocuments(c *gin.Context) {
	app, err := ctl.Docs.Complete(c.Request.Context(), c.GetString("user_id"), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": app})
}

type OverrideProgressInput struct {
	PersonalInfo bool `json:"personal_info"`
	AcademicInfo bool `json:"academic_info"`
	Documents    bool `json:"documents"`
	Payment      bool `json:"payment"`
}

// PATCH /api/admin/applications/:id/progress. The only path that may unset
// a progress flag.
func (ctl *ApplicationController) OverrideProgress(c *gin.Context) {
	var input OverrideProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	app, err := ctl.Apps.OverrideProgress(c.Request.Context(), c.Param("id"), models.Progress{
		PersonalInfo: input.PersonalInfo,
		AcademicInfo: input.AcademicInfo,
		Documents:    input.Documents,
		Payment:      input.Payment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": app})
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/the-y0gi/Go-Apply-sub000/common"
)

// respondError maps the service error taxonomy onto HTTP statuses. Anything
// without a code is an internal failure and stays opaque to the client.
func respondError(c *gin.Context, err error) {
	var appErr *common.Error
	if !errors.As(err, &appErr) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	status := http.StatusInternalServerError
	switch appErr.Code {
	case common.CodeValidation:
		status = http.StatusBadRequest
	case common.CodeSignature:
		status = http.StatusBadRequest
	case common.CodeConflict:
		status = http.StatusConflict
	case common.CodeInvalidState:
		status = http.StatusConflict
	case common.CodeNotFound:
		status = http.StatusNotFound
	case common.CodeGatewayUnavailable:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": appErr.Message, "code": appErr.Code})
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"bookstay/internal/domain/shared/fault"
)

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case fault.IsNotFound(err):
		status = http.StatusNotFound
	case fault.IsForbidden(err):
		status = http.StatusForbidden
	case fault.IsBadRequest(err):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"message": fault.Message(err)})
}

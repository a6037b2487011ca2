package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"annotator/store"
)

// statusFor Map a failure reason to an HTTP status
func statusFor(reason store.Reason) int {
	switch reason {
	case store.ReasonInvalidInput, store.ReasonUnknownKind:
		return http.StatusBadRequest
	case store.ReasonNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeResult Write {"data": true} or the error of a failed result
func writeResult(c *gin.Context, result store.Result) {
	if !result.OK() {
		c.JSON(statusFor(result.Reason), gin.H{"error": result.Err.Error(), "reason": result.Reason})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": true})
}

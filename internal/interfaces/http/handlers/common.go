// Package handlers exposes the acquisition pipeline, map layers, and the
// selection panel over a small JSON API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/venturesonar/venturesonar/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error to its HTTP status. Internal errors
// are masked so upstream details never leak to the client.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}
	c.JSON(status, ErrorResponse{Code: code.String(), Message: message})
}

func respondInvalid(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    errors.ErrCodeBadRequest.String(),
		Message: message,
	})
}

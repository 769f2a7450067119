package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/gestao-escolar-api/pkg/errors"
)

// ErrorBody is the error contract shared by every endpoint.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// DetailBody carries plain confirmations such as deletions.
type DetailBody struct {
	Detail string `json:"detail"`
}

// JSON sends a success response without caching.
func JSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(status, data)
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data)
}

// Detail responds with HTTP 200 and a {detail} confirmation body.
func Detail(c *gin.Context, message string) {
	JSON(c, http.StatusOK, DetailBody{Detail: message})
}

// Error converts the error to its HTTP status and renders {detail}. Server
// errors never leak the wrapped cause.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	detail := appErr.Error()
	if appErr.Status >= http.StatusInternalServerError {
		detail = appErr.Message
	}
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, ErrorBody{Detail: detail})
}

// Abort renders the error and stops the handler chain.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

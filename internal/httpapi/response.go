// Package httpapi is the gin HTTP surface: one router serving this
// dispatcher process directly, not a shared framework fronting many
// service binaries.
package httpapi

import "github.com/gin-gonic/gin"

// Response is the uniform JSON envelope every endpoint returns.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

const (
	CodeSuccess      = 0
	CodeError        = -1
	CodeInvalidParam = 10001
	CodeUnauthorized = 10002
	CodeNotFound     = 10004
	CodeServerError  = 10005
)

func success(c *gin.Context, data any) {
	c.JSON(200, Response{Code: CodeSuccess, Message: "success", Data: data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(400, Response{Code: CodeInvalidParam, Message: message})
}

func unauthorized(c *gin.Context, message string) {
	c.JSON(401, Response{Code: CodeUnauthorized, Message: message})
}

func notFound(c *gin.Context, message string) {
	c.JSON(404, Response{Code: CodeNotFound, Message: message})
}

func serverError(c *gin.Context, message string) {
	c.JSON(500, Response{Code: CodeServerError, Message: message})
}

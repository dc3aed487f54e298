package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Business codes carried in the response envelope next to the HTTP status.
const (
	CodeOK = 0

	CodeInvalidJSON       = 10001
	CodeMissingField      = 10002
	CodeInvalidID         = 10003
	CodeInvalidRole       = 10004
	CodeInvalidPatch      = 10005
	CodeInvalidTheme      = 10006
	CodeUnknownField      = 10007
	CodeEmptyField        = 10008
	CodeInvalidLogo       = 10009
	CodeSelfDeletion      = 10010
	CodeSelfPasswordReset = 10011
	CodeInvalidRange      = 10020
	CodeInvalidTimeRange  = 10021

	CodeUnauthorized       = 40101
	CodeInvalidCredentials = 40102
	CodeForbidden          = 40301
	CodeNotFound           = 40401
	CodeRouteNotFound      = 40400
	CodeMethodNotAllowed   = 40500
	CodeDuplicateUsername  = 40901
	CodeLogoTooLarge       = 41301

	CodeInternal             = 50001
	CodeConfigurationMissing = 50301
)

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    CodeOK,
		"message": "ok",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

// Abort is Fail for middleware: it stops the handler chain.
func Abort(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

package response

import (
	"github.com/gin-gonic/gin"

	"parkly/internal/pkg/errs"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError renders a service error using its kind for the status and its
// machine code for the body. Internal failures are attached to the gin
// context so the error logger middleware records them.
func FromError(c *gin.Context, err error) {
	if errs.KindOf(err) == errs.ErrInternal {
		_ = c.Error(err)
	}
	Error(c, errs.HTTPStatus(err), errs.CodeOf(err), errs.MessageOf(err))
}

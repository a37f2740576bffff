package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"classifieds/internal/apperr"
	"classifieds/internal/logger"
)

// statusOf maps an outcome code to an HTTP status.
func statusOf(code apperr.Code) int {
	switch code {
	case apperr.CodeUnauthenticated:
		return http.StatusUnauthorized
	case apperr.CodeForbidden:
		return http.StatusForbidden
	case apperr.CodeNotFound:
		return http.StatusNotFound
	case apperr.CodeConflict:
		return http.StatusConflict
	case apperr.CodeInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as {"message": ...}. Internal causes are logged, never sent.
func fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	status := statusOf(code)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s [%s]: %v", c.Request.Method, c.Request.URL.Path, requestID(c), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": apperr.Message(err)})
}

// bind decodes the JSON body into req. An empty body is validated as the zero value.
// Validation failures answer 422.
func bind(c *gin.Context, req any) bool {
	var err error
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		err = binding.Validator.ValidateStruct(req)
	} else {
		err = c.ShouldBindJSON(req)
	}
	if err != nil {
		logger.Debugf("bad request body on %s: %v", c.Request.URL.Path, err)
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"message": "invalid request body"})
		return false
	}
	return true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

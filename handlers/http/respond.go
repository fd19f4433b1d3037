package httpHandler

import (
	"errors"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"rental-server/usecases"
)

var registerOnce sync.Once

// RegisterValidation makes binding errors report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, usecases.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, usecases.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, usecases.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, usecases.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecases.ErrConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes {message} with the status of err's kind and aborts the chain.
// Unexpected errors are logged and hidden behind a generic message.
func respondError(c *gin.Context, err error) {
	respondErrorStatus(c, statusFor(err), err)
}

func respondErrorStatus(c *gin.Context, status int, err error) {
	if status == http.StatusInternalServerError {
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.AbortWithStatusJSON(status, gin.H{"message": "Internal server error"})
		return
	}
	c.AbortWithStatusJSON(status, gin.H{"message": usecases.Message(err)})
}

// respondBindError reports a malformed body, with per-field rules when the
// validator produced them.
func respondBindError(c *gin.Context, err error) {
	body := gin.H{"message": "Invalid request body"}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = fe.Tag()
		}
		body["details"] = details
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, body)
}

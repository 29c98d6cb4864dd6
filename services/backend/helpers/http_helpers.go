package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"delivery-marketplace/internal/marketerrors"
	"delivery-marketplace/internal/validation"
	"delivery-marketplace/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterJSONFieldNames makes binding errors name fields by their JSON key
func RegisterJSONFieldNames() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
}

// HandleBindError sends a 400 with per-field detail for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	fields := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = validation.Describe(fe)
		}
	}

	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload", fields)
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps mock backend errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	status := marketerrors.StatusFor(err)
	switch {
	case errors.Is(err, marketerrors.ErrInvalidCredentials):
		return status, "No active account found with the given credentials"
	case errors.Is(err, marketerrors.ErrUnauthenticated):
		return status, "Authentication credentials were not provided."
	case errors.Is(err, marketerrors.ErrAlreadyExists):
		return status, "A user with that username or email already exists."
	case errors.Is(err, marketerrors.ErrNotFound):
		return status, "Not found."
	case errors.Is(err, marketerrors.ErrValidation):
		return status, "invalid request payload"
	default:
		return status, "internal server error"
	}
}

// BearerToken returns the token of the Authorization header, "" if none
func BearerToken(c *gin.Context) string {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	for _, scheme := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimSpace(header[len(scheme):])
		}
	}
	return ""
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

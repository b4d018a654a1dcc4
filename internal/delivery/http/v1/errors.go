package v1

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/adanyl0v/task-api/internal/models"
	"github.com/adanyl0v/task-api/internal/services"
)

var (
	errInvalidRequestBody = errors.New("invalid request body")
	errInvalidQueryParams = errors.New("invalid query parameters")
	errInvalidPathParam   = errors.New("invalid path parameter")
	errNotAuthenticated   = errors.New("not authenticated")
	errInvalidToken       = errors.New("invalid token")
	errValidationFailed   = errors.New("validation failed")
)

var registerTagNameFuncOnce sync.Once

type apiError struct {
	Code    int                   `json:"-"`
	Message string                `json:"error"`
	Details []services.FieldError `json:"details,omitempty"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	c.AbortWithStatusJSON(err.Code, err)
}

// abortUnauthorized also sets the bearer challenge header.
func abortUnauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	abort(c, newAPIError(http.StatusUnauthorized, message))
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newUnprocessableError(message string, details []services.FieldError) apiError {
	err := newAPIError(http.StatusUnprocessableEntity, message)
	err.Details = details
	return err
}

// newBindingError turns a gin binding failure into a 422 with one detail
// per offending field.
func newBindingError(message string, err error) apiError {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		details := make([]services.FieldError, len(validationErrs))
		for i, fe := range validationErrs {
			details[i] = services.FieldError{
				Field:   fe.Field(),
				Message: describeFieldError(fe),
			}
		}
		return newUnprocessableError(errValidationFailed.Error(), details)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return newUnprocessableError(message, []services.FieldError{{
			Field:   typeErr.Field,
			Message: describeTypeError(typeErr),
		}})
	}
	return newUnprocessableError(message, []services.FieldError{{
		Field:   "body",
		Message: err.Error(),
	}})
}

func describeTypeError(err *json.UnmarshalTypeError) string {
	if err.Type == reflect.TypeOf(models.TaskStatus(0)) {
		return fmt.Sprintf("must be one of %s, %s, %s",
			models.StatusPending, models.StatusInProgress, models.StatusDone)
	}
	return fmt.Sprintf("cannot be %s", err.Value)
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

// useWireFieldNames makes validator report json/form names instead of Go
// field names.
func useWireFieldNames() {
	registerTagNameFuncOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return field.Name
		})
	})
}

func (h *handlerImpl) abortWithServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		abort(c, newUnprocessableError(errValidationFailed.Error(), validationErr.Fields))
	case errors.Is(err, services.ErrTaskNotFound):
		abort(c, newNotFoundError(services.ErrTaskNotFound.Error()))
	case errors.Is(err, services.ErrNoFieldsProvided):
		abort(c, newBadRequestError(services.ErrNoFieldsProvided.Error()))
	case errors.Is(err, services.ErrInvalidCredentials):
		abortUnauthorized(c, services.ErrInvalidCredentials.Error())
	default:
		h.logger.Error().
			Err(err).
			Str("path", c.FullPath()).
			Msg("unexpected error")
		abort(c, newStatusTextError(http.StatusInternalServerError))
	}
}

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	classifierdomain "github.com/retailops/quantclass/internal/classifier/domain"
	"github.com/retailops/quantclass/internal/featureschema"
	"github.com/retailops/quantclass/internal/features"
	predictdomain "github.com/retailops/quantclass/internal/predict/domain"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrInternal           = errors.New("internal_error")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// ErrorHandlingMiddleware maps domain errors pushed through gin's error list
// onto JSON error responses.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	switch {
	case errors.Is(err, classifierdomain.ErrModelUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "model service is unavailable",
		}
	case errors.Is(err, featureschema.ErrMissingField),
		errors.Is(err, features.ErrUnparseableDate),
		errors.Is(err, featureschema.ErrSchemaMismatch),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, predictdomain.ErrPredictionFailed):
		return http.StatusInternalServerError, errorPayload{
			Type:    "prediction_failed",
			Message: "prediction failed",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger the error taxonomy without
// leaking message details into log cardinality.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	var vErr *ValidationErrors
	if errors.As(err, &vErr) {
		return "validation_error", "invalid_request"
	}
	switch {
	case errors.Is(err, classifierdomain.ErrModelUnavailable):
		return "service_unavailable", "model_unavailable"
	case errors.Is(err, featureschema.ErrMissingField):
		return "validation_error", "missing_field"
	case errors.Is(err, features.ErrUnparseableDate):
		return "validation_error", "unparseable_date"
	case errors.Is(err, featureschema.ErrSchemaMismatch):
		return "validation_error", "schema_mismatch"
	case errors.Is(err, predictdomain.ErrPredictionFailed):
		return "internal_error", "prediction_failed"
	default:
		return "internal_error", "internal"
	}
}

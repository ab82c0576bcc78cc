package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// apiError carries the HTTP status and a stable code for a failed request
type apiError struct {
	Status int
	Code   string
	Err    error
}

func (e *apiError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *apiError) Unwrap() error { return e.Err }

func newAPIError(status int, code string, err error) *apiError {
	return &apiError{Status: status, Code: code, Err: err}
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

// respondError maps err to a status and writes the error envelope.
func respondError(c *gin.Context, err error) {
	var ae *apiError
	switch {
	case errors.As(err, &ae):
	case errors.Is(err, context.DeadlineExceeded):
		ae = newAPIError(http.StatusGatewayTimeout, "timeout", err)
	case errors.Is(err, context.Canceled):
		ae = newAPIError(http.StatusServiceUnavailable, "canceled", err)
	default:
		ae = newAPIError(http.StatusInternalServerError, "internal", err)
	}
	c.AbortWithStatusJSON(ae.Status, errorEnvelope{Error: errorBody{Message: ae.Error(), Code: ae.Code}})
}

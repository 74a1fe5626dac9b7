package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/vita/internal/domain/lifestyle"
	apperrors "github.com/yanqian/vita/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Details any
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

var codeStatus = map[string]int{
	apperrors.CodeIncompleteInput:    http.StatusUnprocessableEntity,
	apperrors.CodeInvalidInput:       http.StatusBadRequest,
	apperrors.CodeAssessmentExists:   http.StatusConflict,
	apperrors.CodeOnboardingRequired: http.StatusForbidden,
	apperrors.CodeNotFound:           http.StatusNotFound,
	apperrors.CodePersistence:        http.StatusInternalServerError,
	apperrors.CodeLLM:                http.StatusBadGateway,
	"invalid_token":                  http.StatusUnauthorized,
	"invalid_credentials":            http.StatusUnauthorized,
	"email_exists":                   http.StatusConflict,
	"auth_not_configured":            http.StatusServiceUnavailable,
	"oauth_exchange_failed":          http.StatusBadGateway,
}

// fromAppError maps a domain error to its HTTP form. Unknown codes are 500s.
func fromAppError(err error) *HTTPError {
	code := apperrors.CodeOf(err)
	status, ok := codeStatus[code]
	if !ok {
		status = http.StatusInternalServerError
		if code == "" {
			code = "internal_error"
		}
	}
	httpErr := NewHTTPError(status, code, publicMessage(err), err)
	var verr *lifestyle.ValidationError
	if errors.As(err, &verr) {
		httpErr.Details = verr.Fields
	}
	return httpErr
}

func bindError(err error) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err)
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

// publicMessage is the AppError message without the wrapped cause.
func publicMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return errMessage(err)
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

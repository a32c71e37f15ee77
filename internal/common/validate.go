package common

import (
	"errors"
	"net/http"
	"strings"

	validator "github.com/go-playground/validator/v10"
)

// ValidationError translates validator failures into the canonical BAD_REQUEST
// envelope, listing each failing field with its violated rule.
func ValidationError(err error) *AppError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &AppError{
			Code:       "BAD_REQUEST",
			Message:    "invalid payload",
			HTTPStatus: http.StatusBadRequest,
			Err:        err,
		}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		if fe.Param() != "" {
			fields[name] = fe.Tag() + "=" + fe.Param()
		} else {
			fields[name] = fe.Tag()
		}
	}
	return &AppError{
		Code:       "BAD_REQUEST",
		Message:    "validation failed",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
		Details:    map[string]any{"fields": fields},
	}
}

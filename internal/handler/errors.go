package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"ratethem-backend/internal/service"
	"ratethem-backend/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
)

var statusByCode = map[string]int{
	service.CodeInvalidInput:        http.StatusBadRequest,
	service.CodeEmailTaken:          http.StatusBadRequest,
	service.CodeInvalidCredentials:  http.StatusUnauthorized,
	service.CodeInvalidRefreshToken: http.StatusUnauthorized,
	service.CodeUnauthenticated:     http.StatusUnauthorized,
	service.CodeForbidden:           http.StatusForbidden,
	service.CodeNotFound:            http.StatusNotFound,
	service.CodeRatingDuplicate:     http.StatusConflict,
	service.CodeConflict:            http.StatusConflict,
}

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	if status, ok := statusByCode[service.ErrorCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError writes the envelope for a service error and logs server faults
func respondError(c *gin.Context, err error) {
	status := statusFor(err)

	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}

	if status >= http.StatusInternalServerError {
		attrs := []any{"error", err.Error(), "method", c.Request.Method, "path", c.FullPath()}
		if oopsErr, ok := oops.AsOops(err); ok {
			for k, v := range oopsErr.Context() {
				attrs = append(attrs, k, v)
			}
		}
		slog.ErrorContext(c.Request.Context(), "request failed", attrs...)
		utils.ErrorResponse(c, status, "Internal server error")
		return
	}

	utils.ErrorResponse(c, status, err.Error())
}

// respondBindError reports a request that failed binding or validation
func respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describeFieldError(fe)
		}
		utils.ValidationErrorResponse(c, details)
		return
	}

	utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

var fieldNamesOnce sync.Once

// UseJSONFieldNames makes validation errors report json field names
func UseJSONFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
	})
}

// parseID reads a positive numeric path parameter, answering 400 when it is not one
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// queryInt reads an optional integer query parameter, answering 400 when it is malformed
func queryInt(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return v, true
}

// actorFrom rebuilds the caller from the claims stored by the auth middleware
func actorFrom(c *gin.Context) service.Actor {
	return service.Actor{
		UserID: c.GetUint("userID"),
		Email:  c.GetString("email"),
		Role:   c.GetString("role"),
	}
}

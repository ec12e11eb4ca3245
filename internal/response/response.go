// Package response writes the JSON envelope every endpoint answers with and
// maps service errors onto HTTP statuses.
package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"ixadmin/internal/logging"
	"ixadmin/internal/services"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Envelope is the body of every API response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// OK answers 200 with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// OKWithMessage answers 200 with data and a human readable note.
func OKWithMessage(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

// Created answers 201.
func Created(c *gin.Context, data any, message string) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data, Message: message})
}

// Message answers 200 without a data block.
func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Error answers an error envelope with an explicit status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Envelope{Success: false, Error: message})
}

// Abort is Error for middleware: later handlers do not run.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: message})
}

func BadRequest(c *gin.Context, message string) { Error(c, http.StatusBadRequest, message) }
func NotFound(c *gin.Context, message string)   { Error(c, http.StatusNotFound, message) }

// Fail maps err to a status. Service errors keep their own message;
// anything unexpected is logged and answered 500 with fallback.
func Fail(c *gin.Context, err error, fallback string) {
	status, message := Classify(err, fallback)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		logging.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("[API] " + fallback)
	}
	Error(c, status, message)
}

// Classify returns the status and client-facing message for err.
func Classify(err error, fallback string) (int, string) {
	var domain *services.Error
	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &verrs):
		return http.StatusBadRequest, validationMessage(verrs)
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest, "Invalid JSON body"
	case errors.As(err, &typeErr):
		return http.StatusBadRequest, fmt.Sprintf("Invalid value for field %s", typeErr.Field)
	case errors.As(err, &domain):
		return statusFor(domain.Kind), domain.Message
	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return http.StatusConflict, "Resource already exists"
	}
	return http.StatusInternalServerError, fallback
}

func statusFor(kind error) int {
	switch {
	case errors.Is(kind, services.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(kind, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(kind, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(kind, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(kind, services.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// validationMessage lists every failing field, e.g.
// "Validation failed: coordinates (len), region (required)".
func validationMessage(verrs validator.ValidationErrors) string {
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		// Drop the root type so nested fields read like asnList[0].status.
		name := fe.Namespace()
		if i := strings.IndexByte(name, '.'); i >= 0 {
			name = name[i+1:]
		}
		fields = append(fields, fmt.Sprintf("%s (%s)", name, fe.Tag()))
	}
	return "Validation failed: " + strings.Join(fields, ", ")
}

// UseJSONFieldNames makes gin's validator report fields by their JSON
// name so messages match the request body.
func UseJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
}

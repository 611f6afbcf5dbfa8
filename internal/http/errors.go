package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"task-manager/internal/domain"
)

// statusFor es el unico mapeo de Kind a status HTTP.
func statusFor(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindValidation,
		domain.KindInvalidToken,
		domain.KindInvalidCredentials,
		domain.KindDuplicateEmail:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError escribe {"message": ...} y aborta la cadena de handlers.
// La causa de los errores internos solo va al log.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	message := domain.ErrInternal.Message
	var derr *domain.Error
	if errors.As(err, &derr) {
		message = derr.Message
	}
	status := statusFor(domain.KindOf(err))
	if status >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}

// bindJSON decodifica el body; un body vacio equivale a un objeto vacio
// para que la validacion reporte el primer campo faltante.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return domain.NewValidationError(typeErr.Field,
			fmt.Sprintf("%s should be a %s", fieldLabel(typeErr.Field), jsonKind(typeErr.Type)))
	}
	return &domain.Error{Kind: domain.KindValidation, Message: "Invalid request body.", Err: err}
}

func fieldLabel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func jsonKind(t reflect.Type) string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "value"
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		return t.String()
	}
}

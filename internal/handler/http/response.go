package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/AtoyanMikhail/blogauth/internal/apperrors"
	"github.com/AtoyanMikhail/blogauth/internal/logger"
	"github.com/AtoyanMikhail/blogauth/internal/models"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

func writeFieldErrors(w http.ResponseWriter, msgs ...models.ErrorMessage) {
	writeJSON(w, http.StatusBadRequest, models.ErrorsRes{ErrorsMessages: msgs})
}

// writeError maps err to its status. Field-bound failures use the errorsMessages shape,
// internal details are only logged.
func writeError(w http.ResponseWriter, r *http.Request, err error, l logger.Logger) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal(err)
	}

	if appErr.Field != "" {
		writeFieldErrors(w, models.ErrorMessage{Message: appErr.Message, Field: appErr.Field})
		return
	}

	if appErr.Status >= http.StatusInternalServerError {
		l.Error("Request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
	}

	writeJSON(w, appErr.Status, errorResponse{Code: appErr.Code, Message: appErr.Message})
}

// decode reads a JSON body into dst and validates it. It writes the 400 response itself
// and reports false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeFieldErrors(w, models.ErrorMessage{Message: "invalid request body: " + err.Error(), Field: "body"})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			writeFieldErrors(w, models.ErrorMessage{Message: err.Error(), Field: "body"})
			return false
		}

		msgs := make([]models.ErrorMessage, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, models.ErrorMessage{
				Message: fieldMessage(fe),
				Field:   fe.Field(),
			})
		}
		writeFieldErrors(w, msgs...)
		return false
	}
	return true
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "login":
		return fmt.Sprintf("%s may contain only letters, digits, '_' and '-'", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

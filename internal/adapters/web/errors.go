package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"inventory-service/internal/core"
	"inventory-service/internal/logging"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error     string         `json:"error"`
	Code      string         `json:"code"`
	Details   map[string]any `json:"details,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorDetails(w, r, message, code, status, nil)
}

func writeErrorDetails(w http.ResponseWriter, r *http.Request, message, code string, status int, details map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRateLimited writes a 429 with a Retry-After header rounded up to whole seconds.
func writeRateLimited(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	secs := int((retryAfter + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	writeErrorDetails(w, r, "too many requests", "RATE_LIMIT_EXCEEDED", http.StatusTooManyRequests,
		map[string]any{"retry_after_seconds": secs})
}

// writeServiceError maps a domain error to its HTTP status and code.
// Anything unrecognised is logged and reported as a 500 without leaking the cause.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		valErr   *core.ValidationError
		nfErr    *core.NotFoundError
		stErr    *core.OrderStatusError
		stockErr *core.InsufficientStockError
		authErr  *core.AuthorizationError
		ruleErr  *core.BusinessRuleError
		dupErr   *core.DuplicateError
	)
	switch {
	case errors.As(err, &valErr):
		var details map[string]any
		if valErr.Field != "" {
			details = map[string]any{"fields": map[string]string{valErr.Field: valErr.Message}}
		}
		writeErrorDetails(w, r, valErr.Error(), "VALIDATION_ERROR", http.StatusBadRequest, details)
	case errors.As(err, &nfErr):
		writeErrorDetails(w, r, nfErr.Error(), "RESOURCE_NOT_FOUND", http.StatusNotFound,
			map[string]any{"resource": nfErr.Resource})
	case errors.As(err, &stErr):
		writeErrorDetails(w, r, stErr.Error(), "ORDER_STATUS_ERROR", http.StatusConflict, map[string]any{
			"current_status": stErr.Current,
			"target_status":  stErr.Target,
		})
	case errors.As(err, &stockErr):
		writeErrorDetails(w, r, stockErr.Error(), "INSUFFICIENT_STOCK", http.StatusUnprocessableEntity, map[string]any{
			"product_id": stockErr.ProductID,
			"requested":  stockErr.Requested,
			"available":  stockErr.Available,
		})
	case errors.As(err, &authErr):
		writeError(w, r, authErr.Error(), "AUTHORIZATION_ERROR", http.StatusForbidden)
	case errors.As(err, &ruleErr):
		writeError(w, r, ruleErr.Error(), "BUSINESS_RULE_ERROR", http.StatusConflict)
	case errors.As(err, &dupErr):
		writeErrorDetails(w, r, dupErr.Error(), "DUPLICATE_RESOURCE", http.StatusConflict,
			map[string]any{"field": dupErr.Field})
	case errors.Is(err, core.ErrInvalidCredentials):
		writeError(w, r, "invalid username or password", "AUTHENTICATION_ERROR", http.StatusUnauthorized)
	default:
		logging.FromContext(r.Context()).Error("request failed", zap.Error(err))
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

var validate = newValidator()

// newValidator reports fields by their JSON names so error maps match request bodies.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationFields flattens validator errors into field → failed tag.
func validationFields(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// decodeAndValidate decodes the body into v and runs its validate tags.
// On failure it writes the error response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if !decodeJSON(w, r, v) {
		return false
	}
	if err := validate.Struct(v); err != nil {
		fields := validationFields(err)
		if fields == nil {
			writeError(w, r, err.Error(), "VALIDATION_ERROR", http.StatusBadRequest)
			return false
		}
		writeErrorDetails(w, r, "request validation failed", "VALIDATION_ERROR", http.StatusBadRequest,
			map[string]any{"fields": fields})
		return false
	}
	return true
}

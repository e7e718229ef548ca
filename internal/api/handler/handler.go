package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/Rrens/salespulse/internal/api/middleware"
	"github.com/Rrens/salespulse/internal/api/response"
	"github.com/Rrens/salespulse/internal/domain"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ExposeInternalErrors writes the cause of internal errors into responses.
// Only enable it in development.
var ExposeInternalErrors bool

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Func is an HTTP handler that returns its error instead of writing it.
// ServeHTTP is the error boundary: it maps the error kind to a status.
type Func func(w http.ResponseWriter, r *http.Request) error

func (f Func) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if err := f(w, r); err != nil {
		writeError(w, r, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if domain.KindOf(err) == domain.KindInternal {
		log.Error().
			Err(err).
			Str("request_id", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}
	response.Fail(w, err, ExposeInternalErrors)
}

// WithValidation decodes and validates the JSON body before calling next
// with the typed value. Unknown fields are rejected.
func WithValidation[T any](next func(w http.ResponseWriter, r *http.Request, body T) error) Func {
	return func(w http.ResponseWriter, r *http.Request) error {
		var body T
		if err := decodeJSON(w, r, &body); err != nil {
			return err
		}
		if err := validateStruct(body); err != nil {
			return err
		}
		return next(w, r, body)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var sizeErr *http.MaxBytesError

		switch {
		case errors.Is(err, io.EOF):
			return domain.Invalid("request body is required")
		case errors.As(err, &sizeErr):
			return domain.Invalid("request body too large")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return domain.Invalid("invalid request body")
		case errors.As(err, &typeErr):
			field := typeErr.Field
			if field == "" {
				return domain.Invalid("invalid request body")
			}
			return domain.Invalid("validation failed", domain.FieldError{Field: field, Message: "must be a " + typeErr.Type.String()})
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
			return domain.Invalid("validation failed", domain.FieldError{Field: field, Message: "unknown field"})
		default:
			return domain.Invalid("invalid request body")
		}
	}

	if dec.More() {
		return domain.Invalid("request body must contain a single JSON object")
	}
	return nil
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return domain.Invalid("invalid request body")
	}

	fields := make([]domain.FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		fields = append(fields, domain.FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return domain.Invalid("validation failed", fields...)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "field is required"
	case "email":
		return "invalid email format"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "gte":
		return "must be greater than or equal to " + e.Param()
	case "lte":
		return "must be less than or equal to " + e.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "datetime":
		return "must be a date formatted as YYYY-MM-DD"
	case "e164":
		return "must be a phone number in E.164 format"
	case "timezone":
		return "must be an IANA time zone"
	case "len":
		return "must be exactly " + e.Param() + " characters"
	case "hexadecimal":
		return "must be hexadecimal"
	default:
		return "validation failed on " + e.Tag()
	}
}

func actorFrom(r *http.Request) (domain.Actor, error) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		return domain.Actor{}, domain.Unauthenticated("authentication required")
	}
	return actor, nil
}

func identityFrom(r *http.Request) (domain.Identity, error) {
	identity, ok := middleware.GetIdentity(r.Context())
	if !ok {
		return domain.Identity{}, domain.Unauthenticated("authentication required")
	}
	return identity, nil
}

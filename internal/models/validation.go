package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joshua-takyi/events-api/internal/helpers"
)

const (
	LocBody  = "body"
	LocQuery = "query"

	DefaultListLimit = 100
	MaxListLimit     = 1000

	dateFormatMessage = "Date must be in valid ISO format (e.g., 2024-12-31 or 2024-12-31T10:00:00)"
)

// statusOrder fixes the order statuses are listed in messages.
var statusOrder = []EventStatus{StatusDraft, StatusPublished, StatusCancelled, StatusCompleted, StatusActive}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ValidationErrors carries every field failure found in a request.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, len(v))
	for i, fe := range v {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Merge appends the entries of other whose field is not already reported.
func (v ValidationErrors) Merge(other ValidationErrors) ValidationErrors {
	seen := make(map[string]bool, len(v))
	for _, fe := range v {
		seen[fe.Field] = true
	}
	out := append(ValidationErrors{}, v...)
	for _, fe := range other {
		if !seen[fe.Field] {
			out = append(out, fe)
		}
	}
	return out
}

func (v ValidationErrors) Has(field string) bool {
	for _, fe := range v {
		if fe.Field == field {
			return true
		}
	}
	return false
}

var Validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := helpers.ParseISODate(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register isodate validation: %v", err))
	}
	return v
}

// ValidateCreation trims the payload in place and checks every field.
func ValidateCreation(p *CreationPayload) error {
	p.Normalize()
	return validateBody(p)
}

// ValidateUpdate trims the payload in place and checks the fields present.
func ValidateUpdate(p *UpdatePayload) error {
	p.Normalize()
	return validateBody(p)
}

func validateBody(payload any) error {
	err := Validate.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate payload: %w", err)
	}
	out := make(ValidationErrors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, translate(LocBody, fe))
	}
	return out
}

func fieldPath(loc, field string) string {
	return loc + " -> " + field
}

func translate(loc string, fe validator.FieldError) FieldError {
	out := FieldError{Field: fieldPath(loc, fe.Field())}
	switch fe.Tag() {
	case "required":
		out.Message, out.Type = "Field required", "missing"
	case "min":
		out.Message, out.Type = "Field cannot be empty or only whitespace", "string_too_short"
	case "max":
		out.Message, out.Type = fmt.Sprintf("String should have at most %s characters", fe.Param()), "string_too_long"
	case "gt":
		out.Message, out.Type = fmt.Sprintf("Input should be greater than %s", fe.Param()), "greater_than"
	case "lte":
		out.Message, out.Type = fmt.Sprintf("Input should be less than or equal to %s", fe.Param()), "less_than_equal"
	case "isodate":
		out.Message, out.Type = dateFormatMessage, "value_error"
	case "oneof":
		out.Message, out.Type = statusMessage(), "enum"
	default:
		out.Message, out.Type = fmt.Sprintf("Failed on the '%s' rule", fe.Tag()), "value_error"
	}
	return out
}

func statusMessage() string {
	quoted := make([]string, len(statusOrder))
	for i, st := range statusOrder {
		quoted[i] = "'" + st.String() + "'"
	}
	return "Input should be " + strings.Join(quoted[:len(quoted)-1], ", ") + " or " + quoted[len(quoted)-1]
}

// DecodeBody decodes a JSON object into the struct v points to. Keys must
// match a json tag exactly; any other key is ignored, including case
// variants such as "TITLE" that encoding/json would otherwise fold onto
// "title". An empty body yields io.EOF.
func DecodeBody(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return io.EOF
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return json.Unmarshal(data, v)
	}
	known := jsonNames(reflect.TypeOf(v))
	for k := range raw {
		if !known[k] {
			delete(raw, k)
		}
	}
	exact, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	return json.Unmarshal(exact, v)
}

func jsonNames(t reflect.Type) map[string]bool {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	names := make(map[string]bool)
	if t.Kind() != reflect.Struct {
		return names
	}
	for i := 0; i < t.NumField(); i++ {
		name := strings.SplitN(t.Field(i).Tag.Get("json"), ",", 2)[0]
		if name != "" && name != "-" {
			names[name] = true
		}
	}
	return names
}

// DecodeErrors converts a JSON body decode failure into field errors. The
// boolean reports whether the decoded value is still usable, which holds for
// type mismatches on individual fields only.
func DecodeErrors(err error) (ValidationErrors, bool) {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr):
		fe := FieldError{Field: fieldPath(LocBody, typeErr.Field)}
		switch kindOf(typeErr.Type) {
		case reflect.Int, reflect.Int64, reflect.Int32:
			fe.Message, fe.Type = "Input should be a valid integer", "int_type"
		case reflect.String:
			fe.Message, fe.Type = "Input should be a valid string", "string_type"
		default:
			fe.Message, fe.Type = "Input should be a valid "+typeErr.Type.String(), "value_error"
		}
		if typeErr.Field == "" {
			fe.Field = LocBody
		}
		return ValidationErrors{fe}, typeErr.Field != ""
	case errors.Is(err, io.EOF):
		return ValidationErrors{{Field: LocBody, Message: "Field required", Type: "missing"}}, false
	default:
		return ValidationErrors{{Field: LocBody, Message: "JSON decode error", Type: "json_invalid"}}, false
	}
}

func kindOf(t reflect.Type) reflect.Kind {
	if t == nil {
		return reflect.Invalid
	}
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Kind()
}

// DateInPast reports whether value parses to a calendar day before today in UTC.
func DateInPast(value string, now time.Time) bool {
	t, err := helpers.ParseISODate(value)
	if err != nil {
		return false
	}
	y, m, d := t.UTC().Date()
	ny, nm, nd := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Before(time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC))
}

// ListQuery holds the parsed query string of GET /events.
type ListQuery struct {
	Status *EventStatus
	Limit  int
}

// ParseListQuery parses the raw status and limit parameters. The limit range
// is enforced by the service, not here.
func ParseListQuery(status, limit string) (ListQuery, error) {
	q := ListQuery{Limit: DefaultListLimit}
	var verrs ValidationErrors
	if status != "" {
		st, err := ParseEventStatus(status)
		if err != nil {
			verrs = append(verrs, FieldError{Field: fieldPath(LocQuery, "status"), Message: statusMessage(), Type: "enum"})
		} else {
			q.Status = &st
		}
	}
	if limit != "" {
		n, err := strconv.Atoi(strings.TrimSpace(limit))
		if err != nil {
			verrs = append(verrs, FieldError{
				Field:   fieldPath(LocQuery, "limit"),
				Message: "Input should be a valid integer, unable to parse string as an integer",
				Type:    "int_parsing",
			})
		} else {
			q.Limit = n
		}
	}
	if len(verrs) > 0 {
		return q, verrs
	}
	return q, nil
}

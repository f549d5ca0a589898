package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"bankapi/internal/shared/apperr"
	"bankapi/internal/shared/money"
)

// maxBodyBytes caps request bodies; every request schema here is tiny.
const maxBodyBytes = 1 << 20

var (
	errInvalidBody      = apperr.New(apperr.Validation, "Invalid JSON body")
	errInvalidAccountID = apperr.New(apperr.Validation, "Invalid account id")
	errAmountNotNumber  = apperr.New(apperr.Validation, "Amount must be a number")
	errAmountPrecision  = apperr.New(apperr.Validation, "Amount must have at most 2 decimal places")
	errAmountTooLarge   = apperr.New(apperr.Validation, "Amount is too large")
	errAmountMissing    = apperr.New(apperr.Validation, "Amount is required")
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields,
// then checks its validate tags.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return decodeError(err)
	}
	if dec.More() {
		return errInvalidBody
	}
	return validateRequest(dst)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &typeErr) && typeErr.Field != "":
		return apperr.Wrap(apperr.Validation, fmt.Sprintf("Invalid value for %s", typeErr.Field), err)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.TrimPrefix(err.Error(), "json: unknown field ")
		return apperr.Wrap(apperr.Validation, "Unknown field "+field, err)
	default:
		return apperr.Wrap(apperr.Validation, errInvalidBody.Message, err)
	}
}

// validateRequest turns validator failures into a single client message.
// Missing fields are reported together; anything else reports the first
// offending field.
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Wrap(apperr.Internal, "failed to validate request", err)
	}

	var missing []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		}
	}
	if len(missing) > 0 {
		return apperr.Wrap(apperr.Validation, "Missing fields: "+strings.Join(missing, ", "), err)
	}

	fe := fieldErrs[0]
	var msg string
	switch fe.Tag() {
	case "email":
		msg = "Invalid email address"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		msg = fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		msg = fmt.Sprintf("%s is invalid", fe.Field())
	}
	return apperr.Wrap(apperr.Validation, msg, err)
}

// parseAmount converts the raw amount field to cents.
func parseAmount(raw json.RawMessage) (money.Cents, error) {
	amount, err := money.Parse(raw)
	switch {
	case err == nil:
		return amount, nil
	case errors.Is(err, money.ErrMissing):
		return 0, errAmountMissing
	case errors.Is(err, money.ErrTooPrecise):
		return 0, errAmountPrecision
	case errors.Is(err, money.ErrAmountTooLarge):
		return 0, errAmountTooLarge
	default:
		return 0, errAmountNotNumber
	}
}

// pathID reads a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidAccountID
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string) (value int, present bool, err error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, true, err
	}
	return value, true, nil
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20 // 1 MiB

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// "decimal" accepts any value shopspring/decimal can parse.
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := decimal.NewFromString(fl.Field().String())
		return err == nil
	})

	return v
}

// errInvalidBody wraps request decode and validation failures so the
// responder can map them to 422 instead of 500.
type errInvalidBody struct {
	msg string
}

func (e errInvalidBody) Error() string { return e.msg }

// decodeAndValidate reads a JSON body into dst and runs struct validation.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody{msg: "malformed JSON body"}
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
			return errInvalidBody{msg: "invalid fields: " + strings.Join(fields, ", ")}
		}
		return errInvalidBody{msg: err.Error()}
	}

	return nil
}

// pathID parses a numeric path segment such as {id} or {projectID}.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidBody{msg: "invalid " + name + " in path"}
	}
	return id, nil
}

// queryInt64 parses an optional integer query parameter, returning def
// when absent or unparseable.
func queryInt64(r *http.Request, name string, def int64) int64 {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n
	}
	return def
}

// parseNullDecimal converts an optional decimal string into a NullDecimal.
// Nil or empty means unknown, never zero.
func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(*s))
	if err != nil {
		return decimal.NullDecimal{}, errInvalidBody{msg: "invalid decimal value " + *s}
	}
	return decimal.NewNullDecimal(d), nil
}

// nullDecimalString renders a NullDecimal for JSON output, nil when unknown.
func nullDecimalString(d decimal.NullDecimal) *string {
	if !d.Valid {
		return nil
	}
	s := d.Decimal.String()
	return &s
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// invalidDataMessage is the top-level message of every validation failure.
const invalidDataMessage = "The given data was invalid."

var registerValidationOnce sync.Once

// RegisterValidation installs the custom rules and field naming on gin's validator.
func RegisterValidation() {
	registerValidationOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(fieldName)
		_ = engine.RegisterValidation("decimal", isDecimal)
	})
}

// fieldName reports the client-facing name of a struct field.
func fieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(field.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func isDecimal(fl validator.FieldLevel) bool {
	_, ok := numberField(fl.Field().String()).Decimal()
	return ok
}

// validationErrors maps a binding error to field messages.
func validationErrors(err error) map[string][]string {
	out := map[string][]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["body"] = []string{"The request body could not be read."}
		return out
	}
	for _, fe := range verrs {
		field := fe.Field()
		out[field] = append(out[field], ruleMessage(field, fe.Tag()))
	}
	return out
}

func ruleMessage(field, tag string) string {
	label := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "decimal", "numeric":
		return fmt.Sprintf("The %s must be a number.", label)
	default:
		return fmt.Sprintf("The %s is invalid.", label)
	}
}

// addError appends msg to field in errs.
func addError(errs map[string][]string, field, msg string) map[string][]string {
	if errs == nil {
		errs = map[string][]string{}
	}
	errs[field] = append(errs[field], msg)
	return errs
}

func sortedKeys(m map[string][]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// numberField binds a number sent as a JSON number, a JSON string or form text.
type numberField string

func (n *numberField) UnmarshalJSON(raw []byte) error {
	if string(raw) == "null" {
		*n = ""
		return nil
	}
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		*n = numberField(s)
		return nil
	}
	*n = numberField(raw)
	return nil
}

// Decimal parses the field; ok is false when it is empty or not a number.
func (n numberField) Decimal() (decimal.Decimal, bool) {
	raw := strings.TrimSpace(string(n))
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

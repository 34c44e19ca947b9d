package model

import (
	"errors"
	"sort"
	"strings"
)

// NetworkField is the field transport failures are reported under.
const NetworkField = "network"

// Errors maps a field name to its ordered messages.
type Errors map[string][]string

// Add appends msg to the messages of field.
func (e Errors) Add(field, msg string) Errors {
	if e == nil {
		e = Errors{}
	}
	e[field] = append(e[field], msg)

	return e
}

// String renders errors as "field msg" lines ordered by field.
func (e Errors) String() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var lines []string
	for _, f := range fields {
		for _, m := range e[f] {
			lines = append(lines, f+" "+m)
		}
	}

	return strings.Join(lines, "\n")
}

// FieldErrorer is implemented by errors that carry field errors.
type FieldErrorer interface {
	FieldErrors() Errors
}

// ErrorsFrom converts any request failure into field errors. API failures
// keep their field errors; anything else is reported under NetworkField.
func ErrorsFrom(err error) Errors {
	if err == nil {
		return nil
	}
	var fe FieldErrorer
	if errors.As(err, &fe) {
		if errs := fe.FieldErrors(); len(errs) > 0 {
			return errs
		}
	}

	return Errors{NetworkField: {err.Error()}}
}

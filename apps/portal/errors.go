package main

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Jomilqt/student-portal/core"
)

// formatError renders an error the way the UI shows notifications: one line
// for plain errors, one line per field for validation errors.
func formatError(err error) string {
	switch err := err.(type) {
	case validator.ValidationErrors:
		var b strings.Builder
		b.WriteString("invalid input:")
		for _, vErr := range err {
			fmt.Fprintf(&b, "\n  %s: %s", vErr.Field(), vErr.Translate(core.Translator))
		}
		return b.String()
	case *core.ValidationError:
		if err.Fields != nil {
			var b strings.Builder
			b.WriteString("invalid input:")
			for _, fErr := range err.Fields {
				fmt.Fprintf(&b, "\n  %s: %s", fErr.Field, fErr.Error)
			}
			return b.String()
		}
		return err.Error()
	default:
		return err.Error()
	}
}

package student

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/Jomilqt/student-portal/core"
)

var (
	letterGradeTag  = "lettergrade"
	letterGradeText = "grade must be one of A, B, C, D or F"

	letterGrades = []string{"A", "B", "C", "D", "F"}
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(letterGradeTag, letterGradeValidation)
	core.RegisterCustomTranslation(letterGradeTag, letterGradeText)
}

// letterGradeValidation checks that the provided grade is a known letter,
// case-insensitive.
func letterGradeValidation(fl validator.FieldLevel) bool {
	grade := strings.ToUpper(fl.Field().String())
	for _, g := range letterGrades {
		if grade == g {
			return true
		}
	}
	return false
}

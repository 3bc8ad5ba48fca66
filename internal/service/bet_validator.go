package service

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/betting-tracker/internal/models"
)

// ValidationError lists every problem found in a rejected payload
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// BetValidator validates wager payloads before they reach the record store.
// It checks shape only; data-quality warnings such as a negative stake are
// reported by the analytics issue detector instead.
type BetValidator struct {
	validate *validator.Validate
}

// NewBetValidator creates a new bet validator
func NewBetValidator() *BetValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &BetValidator{validate: v}
}

// ValidateBet returns one message per invalid field, or nil
func (v *BetValidator) ValidateBet(in *models.BetInput) []string {
	var problems []string

	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return []string{err.Error()}
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	}

	numbers := []struct {
		name  string
		value *float64
	}{{"stake", in.Stake}, {"payout", in.Payout}, {"profitLoss", in.ProfitLoss}}
	for _, n := range numbers {
		if n.value != nil && (math.IsNaN(*n.value) || math.IsInf(*n.value, 0)) {
			problems = append(problems, fmt.Sprintf("%s must be a finite number", n.name))
		}
	}

	return problems
}

// Check wraps ValidateBet problems in a ValidationError
func (v *BetValidator) Check(in *models.BetInput) error {
	if problems := v.ValidateBet(in); len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

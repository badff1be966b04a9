package cart

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

const (
	msgTitle    = "'title' must be a non-empty string"
	msgQuantity = "'quantity' must be a positive integer"
)

var validate = validator.New()

// normalizedItem is an item that passed validation.
type normalizedItem struct {
	Title    string `validate:"required"`
	Quantity int    `validate:"min=1,max=2147483647"`
}

// normalizeItems validates every input and returns the normalized batch, or
// a *ValidationError listing every violation in input order.
func normalizeItems(inputs []ItemInput) ([]normalizedItem, error) {
	items := make([]normalizedItem, 0, len(inputs))
	var violations []Violation

	for index, input := range inputs {
		quantity, _ := input.Quantity.int()
		item := normalizedItem{Title: input.Title, Quantity: quantity}
		items = append(items, item)

		err := validate.Struct(item)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for _, fe := range fieldErrs {
			switch fe.StructField() {
			case "Title":
				violations = append(violations, Violation{Index: index, Message: msgTitle})
			case "Quantity":
				violations = append(violations, Violation{Index: index, Message: msgQuantity})
			}
		}
	}

	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}
	return items, nil
}

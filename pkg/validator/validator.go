package validator

import (
	"context"
	"fmt"
	"strings"

	playground "github.com/go-playground/validator/v10"
)

// Validate is implemented by requests that check themselves and report problems per field.
type Validate interface {
	Validate(ctx context.Context) (problems map[string][]string)
}

// EchoValidator adapts go-playground/validator to echo's Validator interface.
type EchoValidator struct {
	validate *playground.Validate
}

func New() *EchoValidator {
	return &EchoValidator{validate: playground.New()}
}

func (v *EchoValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// Describe turns validator errors into one readable line per field.
func Describe(err error) string {
	verrs, ok := err.(playground.ValidationErrors)
	if !ok {
		return err.Error()
	}

	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

package expression

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/quatton/qtripal/pkg/qsdk/qerr"
)

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their json names so messages match the CLI flags.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// check validates params and folds every violation into one
// invalid_argument error, in field order.
func (c *Client) check(params any) error {
	err := c.validate.Struct(params)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return qerr.New(qerr.CodeInvalidArgument, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return qerr.Errorf(qerr.CodeInvalidArgument, "%s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "required_if":
		return fmt.Sprintf("%s is required when %s", fe.Field(), conditionOf(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s should be one of [%s], got %q", fe.Field(), strings.Join(strings.Fields(fe.Param()), ", "), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

var conditions = map[string]string{
	"UseColumn true": "use_column is set",
}

// conditionOf turns a required_if param such as "UseColumn true" into
// "use_column is set".
func conditionOf(param string) string {
	if c, ok := conditions[param]; ok {
		return c
	}
	return param
}

package validators

import (
	"errors"
	"reflect"

	"github.com/go-playground/validator/v10"
	nonstandard "github.com/go-playground/validator/v10/non-standard/validators"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/types"
)

// MsgInvalid is used when no message is registered for a failed rule.
const MsgInvalid = "Dữ liệu không hợp lệ."

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", nonstandard.NotBlank); err != nil {
		panic(err)
	}
	// a zero Date counts as missing for "required"
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(types.Date); ok {
			return d.String()
		}
		return nil
	}, types.Date{})
	return v
}

// Messages maps "Field.tag" (or just "Field") to operator-facing text.
type Messages map[string]string

func (m Messages) lookup(fe validator.FieldError) string {
	if msg, ok := m[fe.StructField()+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := m[fe.StructField()]; ok {
		return msg
	}
	return MsgInvalid
}

// Struct validates dest. The returned error is a CodeValidation error whose
// message is the text of the first failing field; details carry every
// failing field keyed by namespace.
func Struct(dest any, messages Messages) error {
	err := validate.Struct(dest)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, MsgInvalid)
	}
	details := map[string]string{}
	message := ""
	for _, fieldErr := range errs {
		text := messages.lookup(fieldErr)
		details[fieldErr.Namespace()] = text
		if message == "" {
			message = text
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, message).WithDetails(details)
}

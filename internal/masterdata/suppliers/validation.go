package suppliers

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

var (
	contactEmailRe = regexp.MustCompile(`^[\w\-.]+@([\w-]+\.)+[\w-]{2,4}$`)
	mobileRe       = regexp.MustCompile(`^(\+63|0)9\d{9}$`)
	companyPhoneRe = regexp.MustCompile(`^(((\+63|0)9\d{9})|(\+63 \d \d{3} \d{4})|(1800 \d{2} \d{3} \d{4}))$`)
)

var labels = map[string]string{
	"name":              "Name",
	"companyContactNum": "Company Contact Number",
	"streetAddress":     "Street Address",
	"postalCode":        "Postal Code",
	"email":             "Email",
	"phone":             "Phone",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	must := func(tag string, re *regexp.Regexp) {
		if err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
			return re.MatchString(fl.Field().String())
		}); err != nil {
			panic(err)
		}
	}
	must("contact_email", contactEmailRe)
	must("ph_mobile", mobileRe)
	must("ph_company_phone", companyPhoneRe)
	return v
}

// validate reports every failing field keyed by its form path, for example
// contactPersons[1].email. Contact indexes follow the submitted rows, blank
// rows included, so each message lands on the row that caused it.
func validate(v *validator.Validate, in Input) error {
	fields := internalShared.FieldErrors{}
	head := in
	head.ContactPersons = nil
	if err := collect(v.Struct(head), fields, func(fe validator.FieldError) string {
		key := fe.Namespace()
		if _, rest, ok := strings.Cut(key, "."); ok {
			key = rest
		}
		return key
	}); err != nil {
		return err
	}
	for i, c := range in.ContactPersons {
		if c.blank() {
			continue
		}
		if err := collect(v.Struct(c), fields, func(fe validator.FieldError) string {
			return fmt.Sprintf("contactPersons[%d].%s", i, fe.Field())
		}); err != nil {
			return err
		}
	}
	return fields.Err()
}

func collect(err error, fields internalShared.FieldErrors, key func(validator.FieldError) string) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		fields.Add(key(fe), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	label := labels[fe.Field()]
	if label == "" {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return "The " + label + " field is required."
	case "max":
		return label + " must be at most " + fe.Param() + " characters."
	case "numeric":
		return label + " must contain digits only."
	case "contact_email":
		return "Invalid email address."
	case "ph_mobile":
		return "Invalid Philippine phone number. (e.g., 09xxxxxxxxx or +639xxxxxxxxx)"
	case "ph_company_phone":
		return "Invalid format. (e.g., 09xxxxxxxxx, +63 2 123 4567, or 1800 10 123 4567)"
	}
	return label + " is invalid."
}

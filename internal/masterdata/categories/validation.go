package categories

import (
	"unicode/utf8"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

const maxNameLength = 100

func validate(in Input) error {
	errs := internalShared.FieldErrors{}
	switch {
	case in.Name == "":
		errs.Add("name", "The Name field is required.")
	case utf8.RuneCountInString(in.Name) > maxNameLength:
		errs.Add("name", "Name must be at most 100 characters.")
	}
	return errs.Err()
}

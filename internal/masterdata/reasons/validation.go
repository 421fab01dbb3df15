package reasons

import internalShared "github.com/stockroom-ims/stockroom/internal/shared"

func validate(in Input) (Type, error) {
	errs := internalShared.FieldErrors{}
	if in.Name == "" {
		errs.Add("name", "The Reason Name field is required.")
	}
	typ, ok := ParseType(in.Type)
	if !ok {
		errs.Add("type", "Type must be In, Out or Both.")
	}
	return typ, errs.Err()
}

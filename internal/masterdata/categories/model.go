package categories

import (
	"strings"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Category groups products for filtering and reporting.
type Category struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Description string `db:"description"`
	IsActive    bool   `db:"is_active"`
	internalShared.Audit
}

// Input carries the editable fields of a category.
type Input struct {
	Name        string
	Description string
}

func (in Input) trimmed() Input {
	return Input{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
}

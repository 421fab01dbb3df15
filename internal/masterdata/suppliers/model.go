package suppliers

import (
	"strings"

	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

// Address is stored as a single jsonb document on the supplier row.
type Address struct {
	Region        string `json:"region"`
	Province      string `json:"province"`
	City          string `json:"city"`
	Barangay      string `json:"barangay"`
	StreetAddress string `json:"streetAddress" validate:"required,max=200"`
	PostalCode    string `json:"postalCode" validate:"omitempty,numeric,max=10"`
}

// Full renders the address from street to region, skipping blank parts.
func (a Address) Full() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{a.StreetAddress, a.Barangay, a.City, a.Province, a.Region} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// ContactPerson is a named contact at the supplier.
type ContactPerson struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,contact_email"`
	Phone string `json:"phone" validate:"required,ph_mobile"`
}

// Supplier provides products.
type Supplier struct {
	ID                string
	Name              string
	CompanyContactNum string
	Address           Address
	ContactPersons    []ContactPerson
	IsActive          bool
	internalShared.Audit
}

// Input carries the editable fields of a supplier.
type Input struct {
	Name              string          `json:"name" validate:"required,max=150"`
	CompanyContactNum string          `json:"companyContactNum" validate:"required,ph_company_phone"`
	Address           Address         `json:"address"`
	ContactPersons    []ContactPerson `json:"contactPersons" validate:"dive"`
}

func (in Input) trimmed() Input {
	out := Input{
		Name:              strings.TrimSpace(in.Name),
		CompanyContactNum: strings.TrimSpace(in.CompanyContactNum),
		Address: Address{
			Region:        strings.TrimSpace(in.Address.Region),
			Province:      strings.TrimSpace(in.Address.Province),
			City:          strings.TrimSpace(in.Address.City),
			Barangay:      strings.TrimSpace(in.Address.Barangay),
			StreetAddress: strings.TrimSpace(in.Address.StreetAddress),
			PostalCode:    strings.TrimSpace(in.Address.PostalCode),
		},
	}
	for _, c := range in.ContactPersons {
		c = ContactPerson{
			Name:  strings.TrimSpace(c.Name),
			Email: strings.TrimSpace(c.Email),
			Phone: strings.TrimSpace(c.Phone),
		}
		out.ContactPersons = append(out.ContactPersons, c)
	}
	return out
}

// filledContacts drops the rows left entirely blank on the form.
func (in Input) filledContacts() []ContactPerson {
	var out []ContactPerson
	for _, c := range in.ContactPersons {
		if c.blank() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (c ContactPerson) blank() bool {
	return c == (ContactPerson{})
}

// FromSupplier fills a form from a stored supplier.
func FromSupplier(s Supplier) Input {
	return Input{
		Name:              s.Name,
		CompanyContactNum: s.CompanyContactNum,
		Address:           s.Address,
		ContactPersons:    s.ContactPersons,
	}
}

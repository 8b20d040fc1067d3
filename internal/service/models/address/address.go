package address

import (
	"github.com/ordermanager/oms/internal/errs"
)

// Address is a value object owned by exactly one order. Every field
// except the complement is required.
type Address struct {
	Cep          string `json:"cep"`
	Street       string `json:"street"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// New creates a validated address.
func New(cep, street, complement, neighborhood, city, state string) (*Address, error) {
	if cep == "" {
		return nil, errs.InvalidArgument("cep is required")
	}
	if street == "" {
		return nil, errs.InvalidArgument("street is required")
	}
	if neighborhood == "" {
		return nil, errs.InvalidArgument("neighborhood is required")
	}
	if city == "" {
		return nil, errs.InvalidArgument("city is required")
	}
	if state == "" {
		return nil, errs.InvalidArgument("state is required")
	}

	return &Address{
		Cep:          cep,
		Street:       street,
		Complement:   complement,
		Neighborhood: neighborhood,
		City:         city,
		State:        state,
	}, nil
}

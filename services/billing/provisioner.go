package billing

import (
	"context"
	"errors"
)

var ErrProvider = errors.New("billing provider error")

// Provisioner creates a customer record at the payment provider. An empty
// reference with a nil error means billing is disabled for this deployment.
type Provisioner interface {
	CreateCustomer(ctx context.Context, email string) (string, error)
}

type DisabledProvisioner struct{}

func (DisabledProvisioner) CreateCustomer(ctx context.Context, email string) (string, error) {
	return "", nil
}

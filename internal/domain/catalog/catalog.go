package catalog

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrSalonNotFound = errors.New("salon not found")
)

const (
	RoleCustomer = "customer"
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
)

type User struct {
	ID       string
	IsActive bool
	Role     string
}

type Service struct {
	ID          string
	Price       int64
	DurationMin int
	IsActive    bool
}

type Salon struct {
	ID       string
	IsActive bool
	OwnerID  string
	Services []Service
}

func (s *Salon) Service(id string) (Service, bool) {
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc, true
		}
	}
	return Service{}, false
}

// UserDirectory and SalonCatalog are served by the account and salon
// services; this engine only reads them.
type UserDirectory interface {
	GetUser(ctx context.Context, id string) (*User, error)
}

type SalonCatalog interface {
	GetSalon(ctx context.Context, id string) (*Salon, error)
}

package catalog

import "context"

const (
	ActionPaymentRefund     = "payment:refund"
	ActionAppointmentManage = "appointment:manage"
)

// Resource identifies what an action targets. Only the owning salon matters
// for the default policy.
type Resource struct {
	Kind    string
	ID      string
	SalonID string
}

type Authorizer interface {
	Authorize(ctx context.Context, actorID, action string, res Resource) (bool, error)
}

// RoleAuthorizer lets admins do anything and salon owners act on their own
// salon's resources.
type RoleAuthorizer struct {
	users  UserDirectory
	salons SalonCatalog
}

func NewRoleAuthorizer(users UserDirectory, salons SalonCatalog) *RoleAuthorizer {
	return &RoleAuthorizer{users: users, salons: salons}
}

func (a *RoleAuthorizer) Authorize(
	ctx context.Context,
	actorID string,
	action string,
	res Resource,
) (bool, error) {
	if actorID == "" {
		return false, nil
	}

	user, err := a.users.GetUser(ctx, actorID)
	if err != nil {
		if err == ErrUserNotFound {
			return false, nil
		}
		return false, err
	}
	if !user.IsActive {
		return false, nil
	}
	if user.Role == RoleAdmin {
		return true, nil
	}

	switch action {
	case ActionPaymentRefund, ActionAppointmentManage:
		salon, err := a.salons.GetSalon(ctx, res.SalonID)
		if err != nil {
			if err == ErrSalonNotFound {
				return false, nil
			}
			return false, err
		}
		return salon.OwnerID == actorID, nil
	}

	return false, nil
}

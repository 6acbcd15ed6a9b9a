package user

import (
	"farmket/domain"
	"farmket/entities"
)

// Account is the authenticated user resolved to exactly one role. The set
// of implementations is closed: Farmer, Buyer and Admin.
type Account interface {
	GetUser() *entities.User
	ID() string
	Role() string
	account()
}

type (
	Farmer struct {
		User    *entities.User
		Profile *entities.FarmerProfile
	}

	Buyer struct {
		User    *entities.User
		Profile *entities.BuyerProfile
	}

	Admin struct {
		User *entities.User
	}
)

func (f Farmer) GetUser() *entities.User { return f.User }
func (f Farmer) ID() string              { return f.User.ID.String() }
func (Farmer) Role() string              { return domain.RoleFarmer }
func (Farmer) account()                  {}

func (b Buyer) GetUser() *entities.User { return b.User }
func (b Buyer) ID() string              { return b.User.ID.String() }
func (Buyer) Role() string              { return domain.RoleBuyer }
func (Buyer) account()                  {}

func (a Admin) GetUser() *entities.User { return a.User }
func (a Admin) ID() string              { return a.User.ID.String() }
func (Admin) Role() string              { return domain.RoleAdmin }
func (Admin) account()                  {}

// ResolveAccount maps a loaded user, with its profiles preloaded, onto the
// Account variant matching its user type.
func ResolveAccount(u *entities.User) (Account, error) {
	if u == nil {
		return nil, domain.ErrUserNotFound
	}

	switch u.UserType {
	case entities.UserTypeFarmer:
		if u.FarmerProfile == nil {
			return nil, domain.ErrProfileNotFound
		}
		return Farmer{User: u, Profile: u.FarmerProfile}, nil
	case entities.UserTypeBuyer:
		if u.BuyerProfile == nil {
			return nil, domain.ErrProfileNotFound
		}
		return Buyer{User: u, Profile: u.BuyerProfile}, nil
	case entities.UserTypeAdmin:
		return Admin{User: u}, nil
	default:
		return nil, domain.ErrUnknownUserType
	}
}

// IsStaff reports whether the account may use staff-only surfaces.
func IsStaff(acc Account) bool {
	if _, ok := acc.(Admin); ok {
		return true
	}
	return acc.GetUser().IsStaff
}

package user

import (
	"farmket/domain"
	"farmket/entities"
)

func ToUserResponse(u *entities.User) domain.UserResponse {
	res := domain.UserResponse{
		ID:             u.ID.String(),
		Username:       u.Username,
		Email:          u.Email,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		UserType:       u.UserType,
		PhoneNumber:    u.PhoneNumber,
		Address:        u.Address,
		ProfilePicture: u.ProfilePicture,
		IsVerified:     u.IsVerified,
		IsStaff:        u.IsStaff,
		CreatedAt:      u.CreatedAt,
	}

	if p := u.FarmerProfile; p != nil {
		res.FarmerProfile = &domain.FarmerProfileResponse{
			FarmName:         p.FarmName,
			FarmSize:         p.FarmSize,
			Location:         p.Location,
			Latitude:         p.Latitude,
			Longitude:        p.Longitude,
			OrganicCertified: p.OrganicCertified,
			Description:      p.Description,
			Rating:           p.Rating,
			TotalSales:       p.TotalSales,
		}
	}
	if p := u.BuyerProfile; p != nil {
		res.BuyerProfile = &domain.BuyerProfileResponse{
			CompanyName:     p.CompanyName,
			DeliveryAddress: p.DeliveryAddress,
			Preferences:     p.Preferences,
		}
	}
	return res
}

// ToUserSummary returns nil for a nil user so callers can map optional
// associations directly.
func ToUserSummary(u *entities.User) *domain.UserSummary {
	if u == nil {
		return nil
	}
	s := &domain.UserSummary{
		ID:             u.ID.String(),
		Username:       u.Username,
		FullName:       u.FullName(),
		UserType:       u.UserType,
		ProfilePicture: u.ProfilePicture,
	}
	if u.FarmerProfile != nil {
		s.FarmName = u.FarmerProfile.FarmName
	}
	if u.BuyerProfile != nil {
		s.CompanyName = u.BuyerProfile.CompanyName
	}
	return s
}

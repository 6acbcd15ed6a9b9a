package entities

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	UserTypeFarmer = "farmer"
	UserTypeBuyer  = "buyer"
	UserTypeAdmin  = "admin"
)

type User struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Username       string    `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email          string    `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	Password       string    `gorm:"not null" json:"-"`
	FirstName      string    `gorm:"type:varchar(150)" json:"first_name"`
	LastName       string    `gorm:"type:varchar(150)" json:"last_name"`
	UserType       string    `gorm:"type:varchar(10);not null;default:buyer" json:"user_type"`
	PhoneNumber    string    `gorm:"type:varchar(17)" json:"phone_number"`
	Address        string    `gorm:"type:text" json:"address"`
	ProfilePicture string    `json:"profile_picture,omitempty"`
	IsVerified     bool      `gorm:"default:false" json:"is_verified"`
	IsStaff        bool      `gorm:"default:false" json:"is_staff"`

	FarmerProfile *FarmerProfile `gorm:"foreignKey:UserID" json:"farmer_profile,omitempty"`
	BuyerProfile  *BuyerProfile  `gorm:"foreignKey:UserID" json:"buyer_profile,omitempty"`
	Timestamp
}

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

type FarmerProfile struct {
	ID               uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID           uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	FarmName         string          `gorm:"type:varchar(200)" json:"farm_name"`
	FarmSize         decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"farm_size"`
	Location         string          `gorm:"type:varchar(200)" json:"location"`
	Latitude         *float64        `json:"latitude,omitempty"`
	Longitude        *float64        `json:"longitude,omitempty"`
	OrganicCertified bool            `gorm:"default:false" json:"organic_certified"`
	Description      string          `gorm:"type:text" json:"description"`
	Rating           decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"rating"`
	TotalSales       int             `gorm:"default:0" json:"total_sales"`
	Timestamp
}

type BuyerProfile struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	CompanyName     string    `gorm:"type:varchar(200)" json:"company_name"`
	DeliveryAddress string    `gorm:"type:text" json:"delivery_address"`
	Preferences     string    `gorm:"type:text" json:"preferences"`
	Timestamp
}

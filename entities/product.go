package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	Name     string    `gorm:"type:varchar(100);not null" json:"name"`
	Slug     string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	IsActive bool      `gorm:"not null" json:"is_active"`
	Timestamp
}

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	FarmerID      uuid.UUID       `gorm:"type:uuid;index;not null" json:"farmer_id"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;index;not null" json:"category_id"`
	Name          string          `gorm:"type:varchar(200);not null" json:"name"`
	Slug          string          `gorm:"type:varchar(220);uniqueIndex;not null" json:"slug"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit          string          `gorm:"type:varchar(20);not null" json:"unit"`
	StockQuantity int             `gorm:"not null;default:0" json:"stock_quantity"`
	MinimumOrder  int             `gorm:"not null;default:1" json:"minimum_order"`
	IsOrganic     bool            `gorm:"default:false" json:"is_organic"`
	HarvestDate   *time.Time      `gorm:"type:date" json:"harvest_date,omitempty"`
	IsAvailable   bool            `gorm:"not null" json:"is_available"`
	Views         int             `gorm:"default:0" json:"views"`

	Farmer   *User           `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Category *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Images   []*ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
	Timestamp
}

func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	ImageURL  string    `gorm:"not null" json:"image_url"`
	IsPrimary bool      `gorm:"default:false" json:"is_primary"`
	Timestamp
}

type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v4()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;index;not null" json:"product_id"`
	BuyerID   uuid.UUID `gorm:"type:uuid;index;not null" json:"buyer_id"`
	Rating    int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`

	Buyer *User `gorm:"foreignKey:BuyerID" json:"buyer,omitempty"`
	Timestamp
}

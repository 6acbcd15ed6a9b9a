package product

import (
	"farmket/domain"
	"farmket/entities"
	"farmket/pkg/user"
)

func ToProductResponse(p *entities.Product) domain.ProductResponse {
	res := domain.ProductResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Slug:          p.Slug,
		Description:   p.Description,
		Price:         p.Price,
		Unit:          p.Unit,
		StockQuantity: p.StockQuantity,
		MinimumOrder:  p.MinimumOrder,
		IsOrganic:     p.IsOrganic,
		HarvestDate:   p.HarvestDate,
		IsAvailable:   p.IsAvailable,
		Views:         p.Views,
		PrimaryImage:  p.PrimaryImage(),
		Farmer:        user.ToUserSummary(p.Farmer),
		CreatedAt:     p.CreatedAt,
	}
	if p.Category != nil {
		c := toCategoryResponse(p.Category)
		res.Category = &c
	}
	for _, img := range p.Images {
		res.Images = append(res.Images, domain.ProductImageResponse{
			ID:        img.ID.String(),
			ImageURL:  img.ImageURL,
			IsPrimary: img.IsPrimary,
		})
	}
	return res
}

func ToProductResponses(products []*entities.Product) []domain.ProductResponse {
	res := make([]domain.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, ToProductResponse(p))
	}
	return res
}

func toCategoryResponse(c *entities.Category) domain.CategoryResponse {
	return domain.CategoryResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Slug:     c.Slug,
		IsActive: c.IsActive,
	}
}

func toReviewResponse(r *entities.Review) domain.ReviewResponse {
	return domain.ReviewResponse{
		ID:        r.ID.String(),
		Rating:    r.Rating,
		Comment:   r.Comment,
		Buyer:     user.ToUserSummary(r.Buyer),
		CreatedAt: r.CreatedAt,
	}
}

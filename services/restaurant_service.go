package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"deliverus-api/apperrors"
	"deliverus-api/models"
	"deliverus-api/repositories"
	"deliverus-api/validation"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateRestaurantInput struct {
	Name          string          `json:"name" binding:"required"`
	Address       string          `json:"address" binding:"required"`
	Description   string          `json:"description"`
	ShippingCosts decimal.Decimal `json:"shipping_costs"`
}

type CreateProductInput struct {
	Name         string          `json:"name" binding:"required"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Availability *bool           `json:"availability"`
}

// UpdateProductInput is a partial update. RestaurantID is kept raw so that its
// presence, even as null, can be rejected.
type UpdateProductInput struct {
	RestaurantID json.RawMessage  `json:"restaurant_id,omitempty"`
	Name         *string          `json:"name"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price"`
	Availability *bool            `json:"availability"`

	restaurantIDSent bool
}

func (in *UpdateProductInput) UnmarshalJSON(data []byte) error {
	type plain UpdateProductInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	sent, err := validation.HasKey(data, "restaurant_id")
	if err != nil {
		return err
	}
	*in = UpdateProductInput(p)
	in.restaurantIDSent = sent
	return nil
}

// RestaurantService handles restaurant browsing and owner-side catalogue management.
type RestaurantService struct {
	db  *gorm.DB
	log *logrus.Logger
}

func NewRestaurantService(db *gorm.DB, logger *logrus.Logger) *RestaurantService {
	return &RestaurantService{db: db, log: logger}
}

func (s *RestaurantService) List(ctx context.Context, search string) ([]models.Restaurant, error) {
	restaurants, err := repositories.NewRestaurantRepository(s.db).List(ctx, strings.TrimSpace(search))
	if err != nil {
		s.log.WithError(err).Error("Failed to list restaurants")
		return nil, apperrors.Internal("failed to list restaurants", err)
	}
	return restaurants, nil
}

// Get returns the restaurant with its products.
func (s *RestaurantService) Get(ctx context.Context, id uint) (*models.Restaurant, error) {
	restaurant, err := repositories.NewRestaurantRepository(s.db).GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.New(apperrors.CodeRestaurantNotFound, "restaurant %d not found", id)
	}
	if err != nil {
		s.log.WithError(err).WithField("restaurant_id", id).Error("Failed to get restaurant")
		return nil, apperrors.Internal("failed to get restaurant", err)
	}
	return restaurant, nil
}

func (s *RestaurantService) Create(ctx context.Context, req models.Requester, in CreateRestaurantInput) (*models.Restaurant, error) {
	if !req.IsOwner() {
		return nil, apperrors.New(apperrors.CodeForbidden, "only owners can create restaurants")
	}
	if in.ShippingCosts.IsNegative() {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "shipping_costs must not be negative")
	}
	if err := checkCents("shipping_costs", in.ShippingCosts); err != nil {
		return nil, err
	}
	restaurant := &models.Restaurant{
		OwnerID:       req.ID,
		Name:          strings.TrimSpace(in.Name),
		Address:       strings.TrimSpace(in.Address),
		Description:   in.Description,
		ShippingCosts: in.ShippingCosts,
	}
	if restaurant.Name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "name is required")
	}
	if err := repositories.NewRestaurantRepository(s.db).Create(ctx, restaurant); err != nil {
		s.log.WithError(err).WithField("owner_id", req.ID).Error("Failed to create restaurant")
		return nil, apperrors.Internal("failed to create restaurant", err)
	}
	s.log.WithFields(logrus.Fields{"restaurant_id": restaurant.ID, "owner_id": req.ID}).Info("Restaurant created")
	return restaurant, nil
}

// AddProduct adds a product to a restaurant owned by the requester.
func (s *RestaurantService) AddProduct(ctx context.Context, req models.Requester, restaurantID uint, in CreateProductInput) (*models.Product, error) {
	repo := repositories.NewRestaurantRepository(s.db)
	if err := s.checkOwner(ctx, repo, req, restaurantID); err != nil {
		return nil, err
	}
	if !in.Price.IsPositive() {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "price must be greater than 0")
	}
	if err := checkCents("price", in.Price); err != nil {
		return nil, err
	}
	product := &models.Product{
		RestaurantID: restaurantID,
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Price:        in.Price,
		Availability: in.Availability == nil || *in.Availability,
	}
	if product.Name == "" {
		return nil, apperrors.New(apperrors.CodeInvalidInput, "name is required")
	}
	if err := repo.CreateProduct(ctx, product); err != nil {
		s.log.WithError(err).WithField("restaurant_id", restaurantID).Error("Failed to create product")
		return nil, apperrors.Internal("failed to create product", err)
	}
	return product, nil
}

// UpdateProduct changes the mutable fields of a product owned by the requester.
func (s *RestaurantService) UpdateProduct(ctx context.Context, req models.Requester, productID uint, in UpdateProductInput) (*models.Product, error) {
	if in.restaurantIDSent || len(in.RestaurantID) > 0 {
		return nil, apperrors.New(apperrors.CodeImmutableField, "restaurant_id cannot be changed")
	}
	repo := repositories.NewRestaurantRepository(s.db)
	product, err := repo.GetProduct(ctx, productID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.ForProduct(apperrors.CodeProductNotFound, productID, "product %d not found", productID)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to get product", err)
	}
	if err := s.checkOwner(ctx, repo, req, product.RestaurantID); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, apperrors.New(apperrors.CodeInvalidInput, "name must not be empty")
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Price != nil {
		if !in.Price.IsPositive() {
			return nil, apperrors.New(apperrors.CodeInvalidInput, "price must be greater than 0")
		}
		if err := checkCents("price", *in.Price); err != nil {
			return nil, err
		}
		product.Price = *in.Price
	}
	if in.Availability != nil {
		product.Availability = *in.Availability
	}
	if err := repo.UpdateProduct(ctx, product); err != nil {
		s.log.WithError(err).WithField("product_id", productID).Error("Failed to update product")
		return nil, apperrors.Internal("failed to update product", err)
	}
	return product, nil
}

// checkCents rejects amounts the decimal(10,2) columns would round.
func checkCents(field string, amount decimal.Decimal) error {
	if !amount.Equal(amount.Round(2)) {
		return apperrors.New(apperrors.CodeInvalidInput, "%s must have at most 2 decimal places", field)
	}
	return nil
}

func (s *RestaurantService) checkOwner(ctx context.Context, repo *repositories.RestaurantRepository, req models.Requester, restaurantID uint) error {
	restaurant, err := repo.RestaurantByID(ctx, restaurantID)
	if err != nil {
		return apperrors.Internal("failed to get restaurant", err)
	}
	if restaurant == nil {
		return apperrors.New(apperrors.CodeRestaurantNotFound, "restaurant %d not found", restaurantID)
	}
	if !req.IsOwner() || restaurant.OwnerID != req.ID {
		return apperrors.New(apperrors.CodeForbidden, "restaurant %d does not belong to you", restaurantID)
	}
	return nil
}

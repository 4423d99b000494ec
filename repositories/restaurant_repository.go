package repositories

import (
	"context"
	"errors"
	"fmt"

	"deliverus-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RestaurantRepository is the GORM access to restaurants and their products.
// It also serves as the validation.Catalog inside order transactions.
type RestaurantRepository struct {
	db     *gorm.DB
	shared bool
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// ForShare returns a repository whose catalog lookups take a shared row lock
// (SELECT ... FOR SHARE), held until the surrounding transaction ends. Owners
// cannot change those products or the restaurant's shipping costs meanwhile.
// SQLite drops the clause and serializes writers instead.
func (r *RestaurantRepository) ForShare() *RestaurantRepository {
	return &RestaurantRepository{db: r.db, shared: true}
}

func (r *RestaurantRepository) catalogQuery(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	if r.shared {
		query = query.Clauses(clause.Locking{Strength: "SHARE"})
	}
	return query
}

func (r *RestaurantRepository) Create(ctx context.Context, restaurant *models.Restaurant) error {
	if err := r.db.WithContext(ctx).Create(restaurant).Error; err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	return nil
}

// List returns restaurants, optionally filtered by a name fragment.
func (r *RestaurantRepository) List(ctx context.Context, search string) ([]models.Restaurant, error) {
	var restaurants []models.Restaurant
	query := r.db.WithContext(ctx).Order("name asc")
	if search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("failed to list restaurants: %w", err)
	}
	return restaurants, nil
}

// GetByID returns the restaurant with its products.
func (r *RestaurantRepository) GetByID(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		First(&restaurant, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get restaurant %d: %w", id, err)
	}
	return &restaurant, nil
}

// RestaurantByID implements validation.Catalog: absence is (nil, nil).
func (r *RestaurantRepository) RestaurantByID(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := r.catalogQuery(ctx).First(&restaurant, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get restaurant %d: %w", id, err)
	}
	return &restaurant, nil
}

// ProductsByIDs implements validation.Catalog. Missing ids are simply absent from the result.
func (r *RestaurantRepository) ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error) {
	var products []models.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.catalogQuery(ctx).Where("id IN ?", ids).Order("id asc").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (r *RestaurantRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *RestaurantRepository) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// UpdateProduct writes the mutable product columns. restaurant_id is never updated.
func (r *RestaurantRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(product).Updates(map[string]any{
		"name":         product.Name,
		"description":  product.Description,
		"price":        product.Price,
		"availability": product.Availability,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update product %d: %w", product.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

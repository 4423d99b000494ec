// Package validation holds the rules an order payload must pass before it is written.
package validation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"deliverus-api/apperrors"
	"deliverus-api/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FreeShippingThreshold is the subtotal above which no shipping costs are charged.
var FreeShippingThreshold = decimal.NewFromInt(10)

// MaxQuantity bounds the units of one product in an order, after merging repeated lines.
const MaxQuantity = 1000

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Catalog is the read side the validators need. Lookups run inside the caller's
// transaction and must keep the rows they return from changing until it ends.
// A nil restaurant with a nil error means the restaurant does not exist.
type Catalog interface {
	RestaurantByID(ctx context.Context, id uint) (*models.Restaurant, error)
	ProductsByIDs(ctx context.Context, ids []uint) ([]models.Product, error)
}

type LineInput struct {
	ProductID int64 `json:"product_id" validate:"gt=0"`
	Quantity  int   `json:"quantity" validate:"gte=1,lte=1000"`
}

type CreateInput struct {
	RestaurantID int64       `json:"restaurant_id"`
	Address      string      `json:"address"`
	Products     []LineInput `json:"products"`
}

// EditInput replaces the address and line items of a pending order.
// RestaurantID is kept raw so that its presence, even as null, can be rejected.
type EditInput struct {
	RestaurantID json.RawMessage `json:"restaurant_id,omitempty"`
	Address      *string         `json:"address,omitempty"`
	Products     []LineInput     `json:"products"`

	restaurantIDSent bool
}

func (in *EditInput) UnmarshalJSON(data []byte) error {
	type plain EditInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	sent, err := HasKey(data, "restaurant_id")
	if err != nil {
		return err
	}
	*in = EditInput(p)
	in.restaurantIDSent = sent
	return nil
}

// HasRestaurantID reports whether the payload carried restaurant_id at all.
func (in EditInput) HasRestaurantID() bool {
	return in.restaurantIDSent || len(in.RestaurantID) > 0
}

// HasKey reports whether the JSON object data has a top-level key, whatever its value.
func HasKey(data []byte, key string) (bool, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return false, err
	}
	_, ok := fields[key]
	return ok, nil
}

type QuoteLine struct {
	ProductID uint
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Quote is the outcome of a successful validation: the lines to store and the derived price.
type Quote struct {
	RestaurantID uint
	Address      string
	Lines        []QuoteLine
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	Total        decimal.Decimal
}

// OrderProducts converts the quoted lines into line items for orderID.
func (q *Quote) OrderProducts(orderID uint) []models.OrderProduct {
	items := make([]models.OrderProduct, 0, len(q.Lines))
	for _, l := range q.Lines {
		items = append(items, models.OrderProduct{
			OrderID:   orderID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Name:      l.Name,
		})
	}
	return items
}

// ValidateCreate runs the creation rules in order and prices the order.
func ValidateCreate(ctx context.Context, catalog Catalog, in CreateInput) (*Quote, error) {
	if in.RestaurantID <= 0 {
		return nil, apperrors.New(apperrors.CodeRestaurantNotFound, "restaurant_id must be a positive integer")
	}
	restaurant, err := catalog.RestaurantByID(ctx, uint(in.RestaurantID))
	if err != nil {
		return nil, apperrors.Internal("failed to load restaurant", err)
	}
	if restaurant == nil {
		return nil, apperrors.New(apperrors.CodeRestaurantNotFound, "restaurant %d does not exist", in.RestaurantID)
	}

	if err := CheckAddress(in.Address); err != nil {
		return nil, err
	}

	lines, err := CheckLines(in.Products)
	if err != nil {
		return nil, err
	}

	products, err := resolveProducts(ctx, catalog, lines)
	if err != nil {
		return nil, err
	}
	if err := CheckProducts(lines, products, restaurant.ID); err != nil {
		return nil, err
	}

	q := buildQuote(lines, products, restaurant.ShippingCosts)
	q.RestaurantID = restaurant.ID
	q.Address = strings.TrimSpace(in.Address)
	return q, nil
}

// ValidateEdit runs the edit rules against the stored order. The products must
// belong to the order's stored restaurant, whatever the payload claims.
func ValidateEdit(ctx context.Context, catalog Catalog, order *models.Order, in EditInput) (*Quote, error) {
	if in.HasRestaurantID() {
		return nil, apperrors.New(apperrors.CodeImmutableField, "restaurant_id cannot be changed")
	}
	if order == nil {
		return nil, apperrors.New(apperrors.CodeOrderNotFound, "order not found")
	}
	if !IsPending(order) {
		return nil, apperrors.New(apperrors.CodeOrderAlreadyStarted, "order %d has already been started", order.ID)
	}

	address := order.Address
	if in.Address != nil {
		if err := CheckAddress(*in.Address); err != nil {
			return nil, err
		}
		address = strings.TrimSpace(*in.Address)
	}

	lines, err := CheckLines(in.Products)
	if err != nil {
		return nil, err
	}
	products, err := resolveProducts(ctx, catalog, lines)
	if err != nil {
		return nil, err
	}
	if err := CheckProducts(lines, products, order.RestaurantID); err != nil {
		return nil, err
	}

	// shipping costs come from the catalog so they are read under the same lock as the products
	restaurant, err := catalog.RestaurantByID(ctx, order.RestaurantID)
	if err != nil {
		return nil, apperrors.Internal("failed to load restaurant", err)
	}
	if restaurant == nil {
		return nil, apperrors.New(apperrors.CodeRestaurantNotFound, "restaurant %d does not exist", order.RestaurantID)
	}

	q := buildQuote(lines, products, restaurant.ShippingCosts)
	q.RestaurantID = order.RestaurantID
	q.Address = address
	return q, nil
}

// IsPending reports whether no restaurant-side processing has begun.
// Any lifecycle timestamp being set means the order is no longer pending.
func IsPending(o *models.Order) bool {
	return o.StartedAt == nil && o.SentAt == nil && o.DeliveredAt == nil
}

func CheckAddress(address string) error {
	if strings.TrimSpace(address) == "" {
		return apperrors.New(apperrors.CodeInvalidInput, "address is required")
	}
	return nil
}

// CheckLines validates the shape of every line and merges repeated product ids,
// keeping first-seen order.
func CheckLines(in []LineInput) ([]LineInput, error) {
	if len(in) == 0 {
		return nil, apperrors.New(apperrors.CodeInvalidProductLine, "products must be a non-empty list")
	}
	merged := make([]LineInput, 0, len(in))
	index := make(map[int64]int, len(in))
	for i, line := range in {
		if err := validate.Struct(line); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) && len(verrs) > 0 {
				fe := verrs[0]
				return nil, apperrors.New(apperrors.CodeInvalidProductLine,
					"products[%d].%s failed on %s=%s", i, fe.Field(), fe.Tag(), fe.Param())
			}
			return nil, apperrors.New(apperrors.CodeInvalidProductLine, "products[%d] is malformed", i)
		}
		if j, ok := index[line.ProductID]; ok {
			merged[j].Quantity += line.Quantity
			if merged[j].Quantity > MaxQuantity {
				return nil, apperrors.New(apperrors.CodeInvalidProductLine,
					"product %d: total quantity must not exceed %d", line.ProductID, MaxQuantity)
			}
			continue
		}
		index[line.ProductID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// CheckProducts applies the existence, same-restaurant and availability rules, in that order.
func CheckProducts(lines []LineInput, products []models.Product, restaurantID uint) error {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	if len(byID) != len(lines) {
		for _, l := range lines {
			if _, ok := byID[uint(l.ProductID)]; !ok {
				return apperrors.ForProduct(apperrors.CodeProductNotFound, uint(l.ProductID),
					"product %d does not exist", l.ProductID)
			}
		}
		return apperrors.New(apperrors.CodeProductNotFound, "expected %d products, found %d", len(lines), len(byID))
	}
	for _, l := range lines {
		if p := byID[uint(l.ProductID)]; p.RestaurantID != restaurantID {
			return apperrors.ForProduct(apperrors.CodeCrossRestaurantOrder, p.ID,
				"product %d belongs to restaurant %d, not %d", p.ID, p.RestaurantID, restaurantID)
		}
	}
	for _, l := range lines {
		if p := byID[uint(l.ProductID)]; !p.Availability {
			return apperrors.ForProduct(apperrors.CodeProductUnavailable, p.ID,
				"product %d is not available", p.ID)
		}
	}
	return nil
}

// OrderPrice applies the shipping rule: shipping is charged when the subtotal is at most the threshold.
func OrderPrice(subtotal, shippingCosts decimal.Decimal) (shipping, total decimal.Decimal) {
	if subtotal.LessThanOrEqual(FreeShippingThreshold) {
		shipping = shippingCosts
	} else {
		shipping = decimal.Zero
	}
	return shipping, subtotal.Add(shipping)
}

func resolveProducts(ctx context.Context, catalog Catalog, lines []LineInput) ([]models.Product, error) {
	ids := make([]uint, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, uint(l.ProductID))
	}
	products, err := catalog.ProductsByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Internal(fmt.Sprintf("failed to load %d products", len(ids)), err)
	}
	return products, nil
}

func buildQuote(lines []LineInput, products []models.Product, shippingCosts decimal.Decimal) *Quote {
	byID := make(map[uint]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	q := &Quote{Subtotal: decimal.Zero}
	for _, l := range lines {
		p := byID[uint(l.ProductID)]
		q.Lines = append(q.Lines, QuoteLine{
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  l.Quantity,
			UnitPrice: p.Price,
		})
		q.Subtotal = q.Subtotal.Add(p.Price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	q.Shipping, q.Total = OrderPrice(q.Subtotal, shippingCosts)
	return q
}

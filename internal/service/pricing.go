package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/chai-nz/cafe-service/internal/models"
)

// Pricer computes order totals from catalog snapshots. It is purely
// computational: no writes, no state beyond the catalog lookup.
type Pricer struct {
	catalog CatalogLookup
}

// NewPricer creates a new pricing engine
func NewPricer(catalog CatalogLookup) *Pricer {
	return &Pricer{catalog: catalog}
}

// PriceOrder validates and prices each requested item. Unit and topping
// prices are snapshots of the catalog at call time; the per-product topping
// price from the junction row is used, never a global topping price. All
// arithmetic is fixed-point decimal.
func (p *Pricer) PriceOrder(ctx context.Context, items []models.OrderItemRequest) (decimal.Decimal, []models.PricedItem, error) {
	if len(items) == 0 {
		return decimal.Zero, nil, ErrEmptyOrder
	}

	total := decimal.Zero
	priced := make([]models.PricedItem, 0, len(items))

	for _, item := range items {
		if item.Quantity < 1 {
			return decimal.Zero, nil, ErrInvalidQuantity
		}

		sugar := item.SugarLevel
		if sugar == "" {
			sugar = models.DefaultSugarLevel
		}
		if !sugar.Valid() {
			return decimal.Zero, nil, ErrInvalidSugarLevel
		}

		size, err := p.catalog.GetProductSize(ctx, item.ProductSizeID)
		if err != nil {
			return decimal.Zero, nil, err
		}
		if size == nil {
			return decimal.Zero, nil, ErrNotFound
		}
		if !size.ProductAvailable {
			return decimal.Zero, nil, &ProductUnavailableError{Name: size.ProductName}
		}

		quantity := decimal.NewFromInt(int64(item.Quantity))
		lineTotal := size.Price.Mul(quantity)

		toppings := make([]models.PricedTopping, 0, len(item.Toppings))
		for _, req := range item.Toppings {
			topping, err := p.catalog.GetTopping(ctx, req.ToppingID)
			if err != nil {
				return decimal.Zero, nil, err
			}
			if topping == nil {
				return decimal.Zero, nil, ErrNotFound
			}
			if !topping.IsAvailable {
				return decimal.Zero, nil, &ToppingUnavailableError{Name: topping.Name}
			}

			junction, err := p.catalog.GetProductTopping(ctx, size.ProductID, topping.ID)
			if err != nil {
				return decimal.Zero, nil, err
			}
			if junction == nil {
				return decimal.Zero, nil, &ToppingNotOfferedError{
					Topping: topping.Name,
					Product: size.ProductName,
				}
			}

			lineTotal = lineTotal.Add(junction.Price.Mul(quantity))
			toppings = append(toppings, models.PricedTopping{
				ToppingID: topping.ID,
				Price:     junction.Price,
			})
		}

		total = total.Add(lineTotal)
		priced = append(priced, models.PricedItem{
			ProductSizeID: size.ID,
			ProductName:   size.ProductName,
			Quantity:      item.Quantity,
			UnitPrice:     size.Price,
			SugarLevel:    sugar,
			Toppings:      toppings,
			LineTotal:     lineTotal,
		})
	}

	return total, priced, nil
}

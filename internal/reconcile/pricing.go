package reconcile

// AggregatePriceQuantity derives the price range and total stock from a
// variation-option set. The rules:
//
//   - empty set: min_price and max_price are null, quantity 0
//   - max_price is the highest regular price
//   - min_price is the lower of the lowest sale price and the lowest regular
//     price: a sale price may only lower the displayed floor, never raise it
//   - quantity is the sum of option quantities, missing quantity counts as 0
//
// Equal prices need no tie-break; whichever of the equal values is picked,
// the result is identical.
func AggregatePriceQuantity(options []VariationOptionValues) PriceQuantitySummary {
	summary := PriceQuantitySummary{}
	if len(options) == 0 {
		return summary
	}

	var minPrice, maxPrice, minSale *float64
	for _, opt := range options {
		if opt.Price != nil {
			if minPrice == nil || *opt.Price < *minPrice {
				minPrice = opt.Price
			}
			if maxPrice == nil || *opt.Price > *maxPrice {
				maxPrice = opt.Price
			}
		}
		if opt.SalePrice != nil {
			if minSale == nil || *opt.SalePrice < *minSale {
				minSale = opt.SalePrice
			}
		}
		if opt.Quantity != nil {
			summary.Quantity += *opt.Quantity
		}
	}

	summary.MaxPrice = maxPrice
	summary.MinPrice = minPrice
	if minSale != nil && (minPrice == nil || *minSale < *minPrice) {
		summary.MinPrice = minSale
	}

	return summary
}

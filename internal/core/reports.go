package core

import (
	"context"
	"sort"

	"retailcore/pkg/domain"
)

// Defaults applied when a report parameter is zero or negative.
const (
	DefaultTopProductsLimit  = 5
	DefaultLowStockThreshold = 5
)

// unknownProductName labels sales whose product record no longer resolves.
const unknownProductName = "(unknown)"

// DailyRevenueRow aggregates revenue for one calendar day.
type DailyRevenueRow struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// TopProductRow aggregates units sold for one product.
type TopProductRow struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// SellerRevenueRow aggregates revenue credited to one seller.
type SellerRevenueRow struct {
	SellerID string  `json:"seller_id"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
}

// ReportGenerator derives aggregate views from the store. Each report reads a
// consistent snapshot, so concurrent sales never skew a single report.
type ReportGenerator struct {
	store domain.Store
}

// NewReportGenerator constructs a generator over the supplied store.
func NewReportGenerator(store domain.Store) *ReportGenerator {
	return &ReportGenerator{store: store}
}

// DailyRevenue sums sale totals per calendar day, ascending by date.
func (g *ReportGenerator) DailyRevenue(ctx context.Context) ([]DailyRevenueRow, error) {
	var rows []DailyRevenueRow
	err := g.store.View(ctx, func(view domain.TransactionView) error {
		totals := make(map[string]float64)
		for _, sale := range view.ListSales() {
			day := sale.Timestamp.Format("2006-01-02")
			totals[day] += sale.Total()
		}
		rows = make([]DailyRevenueRow, 0, len(totals))
		for day, revenue := range totals {
			rows = append(rows, DailyRevenueRow{Date: day, Revenue: revenue})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
		return nil
	})
	return rows, err
}

// TopProducts ranks products by units sold, descending. Ties break on product
// id so repeated runs stay stable. limit values of zero or less fall back to
// the default.
func (g *ReportGenerator) TopProducts(ctx context.Context, limit int) ([]TopProductRow, error) {
	if limit <= 0 {
		limit = DefaultTopProductsLimit
	}
	var rows []TopProductRow
	err := g.store.View(ctx, func(view domain.TransactionView) error {
		quantities := make(map[string]int)
		for _, sale := range view.ListSales() {
			quantities[sale.ProductID] += sale.Quantity
		}
		rows = make([]TopProductRow, 0, len(quantities))
		for productID, qty := range quantities {
			name := unknownProductName
			if product, ok := view.FindProduct(productID); ok {
				name = product.Name
			}
			rows = append(rows, TopProductRow{ProductID: productID, Name: name, Quantity: qty})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Quantity != rows[j].Quantity {
				return rows[i].Quantity > rows[j].Quantity
			}
			return rows[i].ProductID < rows[j].ProductID
		})
		if len(rows) > limit {
			rows = rows[:limit]
		}
		return nil
	})
	return rows, err
}

// RevenueBySeller sums sale totals per credited seller. Sellers appear in the
// order their first sale was recorded; names fall back to the raw id when no
// seller record resolves.
func (g *ReportGenerator) RevenueBySeller(ctx context.Context) ([]SellerRevenueRow, error) {
	var rows []SellerRevenueRow
	err := g.store.View(ctx, func(view domain.TransactionView) error {
		index := make(map[string]int)
		for _, sale := range view.ListSales() {
			i, ok := index[sale.SellerID]
			if !ok {
				name := sale.SellerID
				if seller, found := view.FindSeller(sale.SellerID); found {
					name = seller.Name
				}
				i = len(rows)
				index[sale.SellerID] = i
				rows = append(rows, SellerRevenueRow{SellerID: sale.SellerID, Name: name})
			}
			rows[i].Revenue += sale.Total()
		}
		return nil
	})
	return rows, err
}

// LowStock lists products whose stock is at or below the threshold, in
// insertion order. Threshold values of zero or less fall back to the default.
func (g *ReportGenerator) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}
	var rows []domain.Product
	err := g.store.View(ctx, func(view domain.TransactionView) error {
		for _, product := range view.ListProducts() {
			if product.Stock <= threshold {
				rows = append(rows, product)
			}
		}
		return nil
	})
	return rows, err
}

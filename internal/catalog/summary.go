package catalog

import (
	"context"

	"github.com/montanaflynn/stats"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

// Summary describes the current state of the inventory
type Summary struct {
	Products      int     `json:"products"`
	InStock       int     `json:"in_stock"`
	OutOfStock    int     `json:"out_of_stock"`
	Units         int     `json:"units"`
	MeanStock     float64 `json:"mean_stock"`
	MedianStock   float64 `json:"median_stock"`
	MeanPrice     float64 `json:"mean_price"`
	MeanRentPrice float64 `json:"mean_rent_price"`
}

// Summary aggregates stock and price figures over the whole catalog.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var rows []domain.Product
	err := s.db.WithContext(ctx).
		Select("stock_count", "in_stock", "price", "rent_price").
		Find(&rows).Error
	if err != nil {
		return nil, domain.WrapStoreError(err, "summarize products")
	}

	out := &Summary{Products: len(rows)}
	if len(rows) == 0 {
		return out, nil
	}
	stock := make(stats.Float64Data, 0, len(rows))
	prices := make(stats.Float64Data, 0, len(rows))
	rents := make(stats.Float64Data, 0, len(rows))
	for _, p := range rows {
		if p.StockCount > 0 {
			out.InStock++
		} else {
			out.OutOfStock++
		}
		out.Units += p.StockCount
		stock = append(stock, float64(p.StockCount))
		prices = append(prices, p.Price.InexactFloat64())
		rents = append(rents, p.RentPrice.InexactFloat64())
	}
	out.MeanStock, _ = stats.Round(mean(stock), 2)
	out.MedianStock, _ = stock.Median()
	out.MeanPrice, _ = stats.Round(mean(prices), 2)
	out.MeanRentPrice, _ = stats.Round(mean(rents), 2)
	return out, nil
}

func mean(data stats.Float64Data) float64 {
	m, err := data.Mean()
	if err != nil {
		return 0
	}
	return m
}

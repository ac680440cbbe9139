package app

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/talkincode/tuxedoshop/internal/domain"
)

var defaultProducts = []domain.Product{
	{
		Name:        "Classic Black Tuxedo",
		Description: "A timeless black tuxedo perfect for formal events, weddings, and galas. Made from premium wool blend fabric.",
		Price:       decimal.RequireFromString("599.99"),
		RentPrice:   decimal.RequireFromString("149.99"),
		Images: domain.StringList{
			"https://images.unsplash.com/photo-1594938291221-94f18cbb2600?w=800",
			"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
		},
		Sizes:      domain.StringList{"38", "40", "42", "44", "46", "48"},
		Colors:     domain.StringList{"Black"},
		Category:   domain.CategoryClassic,
		StockCount: 10,
	},
	{
		Name:        "Modern Navy Tuxedo",
		Description: "Contemporary navy blue tuxedo with a modern cut. Perfect for those who want to stand out while maintaining elegance.",
		Price:       decimal.RequireFromString("649.99"),
		RentPrice:   decimal.RequireFromString("169.99"),
		Images: domain.StringList{
			"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
			"https://images.unsplash.com/photo-1594938291221-94f18cbb2600?w=800",
		},
		Sizes:      domain.StringList{"38", "40", "42", "44", "46"},
		Colors:     domain.StringList{"Navy Blue"},
		Category:   domain.CategoryModern,
		StockCount: 8,
	},
	{
		Name:        "Vintage Velvet Tuxedo",
		Description: "Luxurious velvet tuxedo jacket for special occasions. Rich texture and sophisticated style.",
		Price:       decimal.RequireFromString("799.99"),
		RentPrice:   decimal.RequireFromString("199.99"),
		Images: domain.StringList{
			"https://images.unsplash.com/photo-1552374196-c4e7ffc6e126?w=800",
			"https://images.unsplash.com/photo-1594938291221-94f18cbb2600?w=800",
		},
		Sizes:      domain.StringList{"40", "42", "44", "46"},
		Colors:     domain.StringList{"Black Velvet", "Burgundy Velvet"},
		Category:   domain.CategoryVintage,
		StockCount: 5,
	},
	{
		Name:        "White Dinner Jacket",
		Description: "Elegant white dinner jacket perfect for summer events and tropical weddings.",
		Price:       decimal.RequireFromString("549.99"),
		RentPrice:   decimal.RequireFromString("139.99"),
		Images: domain.StringList{
			"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
			"https://images.unsplash.com/photo-1552374196-c4e7ffc6e126?w=800",
		},
		Sizes:      domain.StringList{"38", "40", "42", "44", "46", "48"},
		Colors:     domain.StringList{"White", "Ivory"},
		Category:   domain.CategoryClassic,
		StockCount: 7,
	},
	{
		Name:        "Slim Fit Midnight Blue",
		Description: "Slim-fit midnight blue tuxedo with modern tailoring. Ideal for contemporary formal events.",
		Price:       decimal.RequireFromString("679.99"),
		RentPrice:   decimal.RequireFromString("179.99"),
		Images: domain.StringList{
			"https://images.unsplash.com/photo-1594938291221-94f18cbb2600?w=800",
			"https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?w=800",
		},
		Sizes:      domain.StringList{"38", "40", "42", "44"},
		Colors:     domain.StringList{"Midnight Blue"},
		Category:   domain.CategoryModern,
		StockCount: 6,
	},
}

// checkProducts seeds the starter catalog into an empty products table
func (a *Application) checkProducts() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to count products", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	for _, tpl := range defaultProducts {
		p := tpl
		p.ID = 0
		if err := a.gormDB.Create(&p).Error; err != nil {
			zap.L().Error("failed to seed product", zap.String("name", p.Name), zap.Error(err))
			continue
		}
		zap.L().Info("initialized product", zap.String("name", p.Name), zap.Int("stock", p.StockCount))
	}
}

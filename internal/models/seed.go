package models

// DefaultBrands is the brand list served until the remote registry is
// synced, and the fallback registry in local-only mode.
var DefaultBrands = []string{"밸롭", "웨이든", "부기프리", "파스티야"}

// SeedProducts returns the static collection served in local-only mode and
// restored on logout. Returned as a fresh slice so callers may mutate it.
func SeedProducts() []Product {
	return []Product{
		{
			ID:                "1",
			Season:            "2024 S/S",
			Category:          "Clothing",
			Brand:             "밸롭",
			ItemName:          "오버사이즈 린넨 셔츠",
			SKU:               "SH-001-LN",
			Status:            StatusProduction,
			PlanQty:           500,
			CostPrice:         25000,
			RetailPrice:       89000,
			TargetSellThrough: 85,
			MarketingBudget:   2000000,
			DesignImage:       "https://images.unsplash.com/photo-1596755094514-f87e34085b2c?auto=format&fit=crop&q=80&w=600",
			Material:          "Linen 100%, Bio-washed",
			OrderType:         "New",
			Supplier:          "패션트레이딩",
			Factory:           "동대문 A공장",
			ColorList:         "White, Navy",
			SizeList:          "M, L, XL",
			SKUBreakdown: []BreakdownRow{
				{Color: "White", Size: "M", Ratio: 16, Qty: 80},
				{Color: "White", Size: "L", Ratio: 17, Qty: 85},
				{Color: "White", Size: "XL", Ratio: 17, Qty: 85},
				{Color: "Navy", Size: "M", Ratio: 16, Qty: 80},
				{Color: "Navy", Size: "L", Ratio: 17, Qty: 85},
				{Color: "Navy", Size: "XL", Ratio: 17, Qty: 85},
			},
			SalesStartDate: "2024-03-01",
			SalesEndDate:   "2024-08-31",
			Author:         "김민준",
			Department:     "상품기획 1팀",
			AuthorUID:      "mock-uid-1",
		},
	}
}

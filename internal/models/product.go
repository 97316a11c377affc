package models

// Status is a product lifecycle stage.
type Status string

const (
	StatusPlanning     Status = "Planning"
	StatusProduction   Status = "Production"
	StatusSales        Status = "Sales"
	StatusDiscontinued Status = "Discontinued"
)

// ValidStatus reports whether s is one of the known lifecycle stages.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPlanning, StatusProduction, StatusSales, StatusDiscontinued:
		return true
	}
	return false
}

// BreakdownRow is one color/size slice of the planned quantity.
type BreakdownRow struct {
	Color string `json:"color"`
	Size  string `json:"size"`
	Ratio int    `json:"ratio"`
	Qty   int    `json:"qty"`
}

// Comment is a free-form note attached to a product.
type Comment struct {
	Author    string `json:"author"`
	Text      string `json:"text"`
	CreatedAt string `json:"createdAt"`
}

// Product represents one catalog entry. JSON tags match the remote store
// document layout, so the same struct round-trips through snapshots.
type Product struct {
	ID                string         `json:"id"`
	Season            string         `json:"season"`
	Category          string         `json:"category"`
	Brand             string         `json:"brand"`
	ItemName          string         `json:"itemName"`
	SKU               string         `json:"sku"`
	Status            Status         `json:"status"`
	PlanQty           int            `json:"planQty"`
	CostPrice         float64        `json:"costPrice"`
	RetailPrice       float64        `json:"retailPrice"`
	TargetSellThrough float64        `json:"targetSellThrough"`
	MarketingBudget   float64        `json:"marketingBudget"`
	DesignImage       string         `json:"designImage,omitempty"`
	TrimImage         string         `json:"trimImage,omitempty"`
	PackageImage      string         `json:"packageImage,omitempty"`
	TagImage          string         `json:"tagImage,omitempty"`
	PlanFileURL       string         `json:"planFileUrl,omitempty"`
	Material          string         `json:"material"`
	OrderType         string         `json:"orderType"`
	Supplier          string         `json:"supplier"`
	Factory           string         `json:"factory"`
	Comments          []Comment      `json:"comments,omitempty"`
	ColorList         string         `json:"colorList"`
	SizeList          string         `json:"sizeList"`
	SKUBreakdown      []BreakdownRow `json:"skuBreakdown,omitempty"`
	SalesStartDate    string         `json:"salesStartDate"`
	SalesEndDate      string         `json:"salesEndDate"`
	Author            string         `json:"author"`
	Department        string         `json:"department"`
	AuthorUID         string         `json:"authorUid,omitempty"`
}

package schema

// Medicine is one sellable product in the catalog.
type Medicine struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	GenericName string  `json:"generic_name,omitempty"`
	Category    string  `json:"category,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Price       float64 `json:"price"`
	Stock       int64   `json:"stock"`
	ReorderAt   int64   `json:"reorder_at,omitempty"`
	ExpiresAt   string  `json:"expires_at,omitempty"`
	SupplierID  string  `json:"supplier_id,omitempty"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// Sale is one completed point-of-sale transaction.
type Sale struct {
	ID          string  `json:"id"`
	CustomerID  string  `json:"customer_id,omitempty"`
	UserID      string  `json:"user_id,omitempty"`
	TotalAmount float64 `json:"total_amount"`
	Discount    float64 `json:"discount"`
	PaidAmount  float64 `json:"paid_amount"`
	DueAmount   float64 `json:"due_amount"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// SaleItem is one line of a sale.
type SaleItem struct {
	ID         string  `json:"id"`
	SaleID     string  `json:"sale_id"`
	MedicineID string  `json:"medicine_id"`
	Quantity   int64   `json:"quantity"`
	UnitPrice  float64 `json:"unit_price"`
	Subtotal   float64 `json:"subtotal"`
}

// Purchase is one stock intake from a supplier.
type Purchase struct {
	ID          string  `json:"id"`
	SupplierID  string  `json:"supplier_id"`
	InvoiceNo   string  `json:"invoice_no,omitempty"`
	TotalAmount float64 `json:"total_amount"`
	PaidAmount  float64 `json:"paid_amount"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// PurchaseItem is one line of a purchase.
type PurchaseItem struct {
	ID         string  `json:"id"`
	PurchaseID string  `json:"purchase_id"`
	MedicineID string  `json:"medicine_id"`
	Quantity   int64   `json:"quantity"`
	UnitCost   float64 `json:"unit_cost"`
	BatchNo    string  `json:"batch_no,omitempty"`
	ExpiresAt  string  `json:"expires_at,omitempty"`
}

// Supplier is a wholesale source of stock.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// Customer is a registered buyer, tracked for dues and history.
type Customer struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Address string  `json:"address,omitempty"`
	Due     float64 `json:"due"`
}

// StockAdjustment records a manual stock correction outside of sales and
// purchases (damage, expiry, count mismatch).
type StockAdjustment struct {
	ID         string `json:"id"`
	MedicineID string `json:"medicine_id"`
	Delta      int64  `json:"delta"`
	Reason     string `json:"reason"`
	UserID     string `json:"user_id,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// Package entity provides typed, convenience views over the untyped rows
// the transaction manager and Resource Store actually exchange
// (map[string]any). Each type here is a plain struct with AsMap/FromMap
// conversions covering the rows this system moves (Account,
// LedgerTransaction, Product, Order) — it is a translation layer, never a
// replacement for the dynamic core.
package entity

// Account is a financial account row.
type Account struct {
	ID        string  `json:"id"`
	Owner     string  `json:"owner"`
	Balance   float64 `json:"balance"`
	Active    bool    `json:"active"`
}

// AsMap renders the account as the row shape the store expects.
func (a Account) AsMap() map[string]any {
	m := map[string]any{
		"owner":   a.Owner,
		"balance": a.Balance,
		"active":  a.Active,
	}
	if a.ID != "" {
		m["id"] = a.ID
	}
	return m
}

// AccountFromMap reconstructs an Account from a row.
func AccountFromMap(row map[string]any) Account {
	return Account{
		ID:      stringField(row, "id"),
		Owner:   stringField(row, "owner"),
		Balance: floatField(row, "balance"),
		Active:  boolField(row, "active", true),
	}
}

// LedgerTransaction records a completed transfer, deposit, or withdrawal
// against the financial database (from/to account ids, kind, status).
type LedgerTransaction struct {
	ID            string  `json:"id"`
	FromAccountID string  `json:"from_account_id"`
	ToAccountID   string  `json:"to_account_id"`
	Amount        float64 `json:"amount"`
	Kind          string  `json:"kind"`
	Description   string  `json:"description"`
	Status        string  `json:"status"`
}

// AsMap renders the ledger entry as a row.
func (l LedgerTransaction) AsMap() map[string]any {
	return map[string]any{
		"from_account_id": l.FromAccountID,
		"to_account_id":   l.ToAccountID,
		"amount":          l.Amount,
		"kind":            l.Kind,
		"description":     l.Description,
		"status":          l.Status,
	}
}

// LedgerTransactionFromMap reconstructs a LedgerTransaction from a row.
func LedgerTransactionFromMap(row map[string]any) LedgerTransaction {
	return LedgerTransaction{
		ID:            stringField(row, "id"),
		FromAccountID: stringField(row, "from_account_id"),
		ToAccountID:   stringField(row, "to_account_id"),
		Amount:        floatField(row, "amount"),
		Kind:          stringField(row, "kind"),
		Description:   stringField(row, "description"),
		Status:        stringField(row, "status"),
	}
}

// Product is an inventory catalog row.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
}

// AsMap renders the product as a row.
func (p Product) AsMap() map[string]any {
	m := map[string]any{
		"name":  p.Name,
		"price": p.Price,
		"stock": p.Stock,
	}
	if p.ID != "" {
		m["id"] = p.ID
	}
	return m
}

// ProductFromMap reconstructs a Product from a row.
func ProductFromMap(row map[string]any) Product {
	return Product{
		ID:    stringField(row, "id"),
		Name:  stringField(row, "name"),
		Price: floatField(row, "price"),
		Stock: intField(row, "stock"),
	}
}

// Order is an inventory order row: one row per order, with no separate
// line-item table.
type Order struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
	Status    string  `json:"status"`
}

// AsMap renders the order as a row.
func (o Order) AsMap() map[string]any {
	m := map[string]any{
		"product_id": o.ProductID,
		"quantity":   o.Quantity,
		"total":      o.Total,
		"status":     o.Status,
	}
	if o.ID != "" {
		m["id"] = o.ID
	}
	return m
}

// OrderFromMap reconstructs an Order from a row.
func OrderFromMap(row map[string]any) Order {
	return Order{
		ID:        stringField(row, "id"),
		ProductID: stringField(row, "product_id"),
		Quantity:  intField(row, "quantity"),
		Total:     floatField(row, "total"),
		Status:    stringField(row, "status"),
	}
}

func stringField(row map[string]any, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func floatField(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func intField(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func boolField(row map[string]any, key string, def bool) bool {
	v, ok := row[key]
	if !ok || v == nil {
		return def
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

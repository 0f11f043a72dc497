package schema

import (
	"encoding/json"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
)

// Mutation operation names, matching the outbox wire values.
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// tableSchemas holds one closed CUE definition per writable table.
// All fields are optional so the same definition validates both full
// inserts and partial updates; required-on-insert fields are listed
// separately in tableRequired.
const tableSchemas = `
#Medicine: {
	id?:           string
	name?:         string
	generic_name?: string
	category?:     string
	unit?:         string
	price?:        number & >=0
	stock?:        int & >=0
	reorder_at?:   int & >=0
	expires_at?:   string
	supplier_id?:  string
	created_at?:   string
}

#Sale: {
	id?:           string
	customer_id?:  string
	user_id?:      string
	total_amount?: number & >=0
	discount?:     number & >=0
	paid_amount?:  number & >=0
	due_amount?:   number & >=0
	created_at?:   string
}

#SaleItem: {
	id?:          string
	sale_id?:     string
	medicine_id?: string
	quantity?:    int & >0
	unit_price?:  number & >=0
	subtotal?:    number & >=0
}

#Purchase: {
	id?:           string
	supplier_id?:  string
	invoice_no?:   string
	total_amount?: number & >=0
	paid_amount?:  number & >=0
	created_at?:   string
}

#PurchaseItem: {
	id?:          string
	purchase_id?: string
	medicine_id?: string
	quantity?:    int & >0
	unit_cost?:   number & >=0
	batch_no?:    string
	expires_at?:  string
}

#Supplier: {
	id?:      string
	name?:    string
	phone?:   string
	email?:   string
	address?: string
}

#Customer: {
	id?:      string
	name?:    string
	phone?:   string
	address?: string
	due?:     number
}

#StockAdjustment: {
	id?:          string
	medicine_id?: string
	delta?:       int
	reason?:      string
	user_id?:     string
	created_at?:  string
}
`

// tableDefs maps remote table names to their CUE definition labels.
var tableDefs = map[string]string{
	"medicines":         "#Medicine",
	"sales":             "#Sale",
	"sale_items":        "#SaleItem",
	"purchases":         "#Purchase",
	"purchase_items":    "#PurchaseItem",
	"suppliers":         "#Supplier",
	"customers":         "#Customer",
	"stock_adjustments": "#StockAdjustment",
}

// tableRequired lists the fields an insert must carry per table.
var tableRequired = map[string][]string{
	"medicines":         {"id", "name", "price", "stock"},
	"sales":             {"id", "total_amount", "paid_amount"},
	"sale_items":        {"id", "sale_id", "medicine_id", "quantity", "unit_price"},
	"purchases":         {"id", "supplier_id", "total_amount"},
	"purchase_items":    {"id", "purchase_id", "medicine_id", "quantity", "unit_cost"},
	"suppliers":         {"id", "name"},
	"customers":         {"id", "name"},
	"stock_adjustments": {"id", "medicine_id", "delta", "reason"},
}

// Registry validates mutation payloads against the table definitions.
// Construct once with NewRegistry and share; Validate is safe for
// concurrent use.
type Registry struct {
	tables map[string]cue.Value
}

// NewRegistry compiles the table definitions.
func NewRegistry() (*Registry, error) {
	ctx := cuecontext.New()
	root := ctx.CompileString(tableSchemas)
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("compile table schemas: %w", err)
	}

	tables := make(map[string]cue.Value, len(tableDefs))
	for table, def := range tableDefs {
		v := root.LookupPath(cue.ParsePath(def))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("lookup %s: %w", def, err)
		}
		tables[table] = v
	}

	return &Registry{tables: tables}, nil
}

// Validate checks a mutation payload before it is applied or queued.
//
// Rules:
//   - update and delete payloads must carry a non-empty "id" field,
//     for every table, known or not.
//   - insert payloads for known tables must carry that table's required
//     fields and must unify with the table's closed CUE definition.
//   - update payloads for known tables must unify with the definition
//     (any subset of fields).
//   - delete payloads are only a row selector; no shape check beyond id.
//   - unknown tables pass: the remote service stays authoritative for
//     tables this client has no definition for.
func (r *Registry) Validate(table, op string, payload map[string]any) error {
	switch op {
	case OpInsert, OpUpdate, OpDelete:
	default:
		return &ValidationError{Table: table, Message: fmt.Sprintf("unsupported operation %q", op)}
	}

	if op == OpUpdate || op == OpDelete {
		if err := requireID(table, payload); err != nil {
			return err
		}
	}
	if op == OpDelete {
		return nil
	}

	def, ok := r.tables[table]
	if !ok {
		return nil
	}

	if op == OpInsert {
		for _, field := range tableRequired[table] {
			if _, present := payload[field]; !present {
				return &ValidationError{
					Table:   table,
					Field:   field,
					Message: "required for insert",
				}
			}
		}
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return &ValidationError{Table: table, Message: fmt.Sprintf("payload not encodable: %v", err)}
	}
	if err := cuejson.Validate(encoded, def); err != nil {
		return &ValidationError{Table: table, Message: err.Error()}
	}
	return nil
}

// requireID checks that payload selects a row.
func requireID(table string, payload map[string]any) error {
	id, present := payload["id"]
	if !present {
		return &ValidationError{Table: table, Field: "id", Message: "required to select the target row"}
	}
	if s, isString := id.(string); isString && s == "" {
		return &ValidationError{Table: table, Field: "id", Message: "must not be empty"}
	}
	return nil
}

// ValidationError reports a payload that does not fit its table shape.
type ValidationError struct {
	Table   string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("payload for %s: field %q %s", e.Table, e.Field, e.Message)
	}
	return fmt.Sprintf("payload for %s: %s", e.Table, e.Message)
}

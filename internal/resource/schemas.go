package resource

import (
	"github.com/shopspring/decimal"

	"github.com/aoideee/inventory-console/internal/data"
)

// Row is a formatted table row.
type Row struct {
	ID    string
	Cells []string
}

// Schemas returns the five resource schemas in menu order.
func Schemas() []Schema[Row] {
	return []Schema[Row]{Items(), Locations(), Supply(), Demand(), Thresholds()}
}

var (
	itemLookup     = Field{Name: "itemId", Label: "Item ID", Kind: FieldLookup, Lookup: "items"}
	locationLookup = Field{Name: "locationId", Label: "Location ID", Kind: FieldLookup, Lookup: "locations"}
)

// Items is the schema of the product catalogue.
func Items() Schema[Row] {
	return Schema[Row]{
		Name:       "items",
		Label:      "Item",
		Plural:     "items",
		ListPath:   "/items",
		MutatePath: "/items",
		LookupPath: "/items",
		IDField:    "itemId",
		Fields: []Field{
			{Name: "itemDescription", Label: "Description", Kind: FieldText},
			{Name: "category", Label: "Category", Kind: FieldText},
			{Name: "type", Label: "Type", Kind: FieldText},
			{Name: "status", Label: "Status", Kind: FieldSelect, Options: []string{"ACTIVE", "INACTIVE"}},
			{Name: "price", Label: "Price", Kind: FieldNumber},
			{Name: "pickupAllowed", Label: "Pickup allowed", Kind: FieldBool},
			{Name: "shippingAllowed", Label: "Shipping allowed", Kind: FieldBool},
			{Name: "deliveryAllowed", Label: "Delivery allowed", Kind: FieldBool},
		},
		Required:    []string{"itemDescription", "category", "type", "status", "price"},
		NonNegative: []NumericRule{{Field: "price", Message: "Price Should not be negitive."}},
		Columns:     []string{"Item ID", "Description", "Category", "Type", "Status", "Price", "Pickup", "Shipping", "Delivery"},
		Format:      formatItem,
	}
}

// Locations is the schema of stores and warehouses.
func Locations() Schema[Row] {
	return Schema[Row]{
		Name:       "locations",
		Label:      "Location",
		Plural:     "locations",
		ListPath:   "/locations",
		MutatePath: "/locations",
		LookupPath: "/locations",
		IDField:    "locationId",
		Fields: []Field{
			{Name: "locationDesc", Label: "Description", Kind: FieldText},
			{Name: "locationType", Label: "Type", Kind: FieldSelect, Options: []string{"STORE", "WAREHOUSE", "DC"}},
			{Name: "addressLine1", Label: "Address", Kind: FieldText},
			{Name: "city", Label: "City", Kind: FieldText},
			{Name: "state", Label: "State", Kind: FieldText},
			{Name: "country", Label: "Country", Kind: FieldText},
			{Name: "pinCode", Label: "PIN code", Kind: FieldText},
			{Name: "pickupAllowed", Label: "Pickup allowed", Kind: FieldBool},
			{Name: "shippingAllowed", Label: "Shipping allowed", Kind: FieldBool},
			{Name: "deliveryAllowed", Label: "Delivery allowed", Kind: FieldBool},
		},
		Required: []string{"locationDesc", "locationType"},
		Columns:  []string{"Location ID", "Description", "Type", "City", "State", "Pickup", "Shipping", "Delivery"},
		Format:   formatLocation,
	}
}

// Supply is the schema of on-hand and inbound stock.
func Supply() Schema[Row] {
	return Schema[Row]{
		Name:       "supply",
		Label:      "Supply",
		Plural:     "supply",
		ListPath:   "/supply/all",
		MutatePath: "/supply",
		IDField:    "supplyId",
		SearchBy:   "item",
		Fields: []Field{
			itemLookup,
			locationLookup,
			{Name: "supplyType", Label: "Supply type", Kind: FieldSelect, Options: []string{"ONHAND", "INTRANSIT", "DAMAGED"}},
			{Name: "quantity", Label: "Quantity", Kind: FieldNumber},
		},
		Required:    []string{"itemId", "locationId", "supplyType", "quantity"},
		NonNegative: []NumericRule{{Field: "quantity", Message: "Quantity Should not be negitive."}},
		Columns:     []string{"Supply ID", "Item ID", "Location ID", "Supply type", "Quantity"},
		Format:      formatSupply,
	}
}

// Demand is the schema of promised and planned consumption.
func Demand() Schema[Row] {
	return Schema[Row]{
		Name:       "demand",
		Label:      "Demand",
		Plural:     "demand",
		ListPath:   "/demand/all",
		MutatePath: "/demand",
		IDField:    "demandId",
		SearchBy:   "item",
		Fields: []Field{
			itemLookup,
			locationLookup,
			{Name: "demandType", Label: "Demand type", Kind: FieldSelect, Options: []string{"HARD_PROMISED", "PLANNED"}},
			{Name: "quantity", Label: "Quantity", Kind: FieldNumber},
		},
		Required:    []string{"itemId", "locationId", "demandType", "quantity"},
		NonNegative: []NumericRule{{Field: "quantity", Message: "Quantity Should not be negitive."}},
		Columns:     []string{"Demand ID", "Item ID", "Location ID", "Demand type", "Quantity"},
		Format:      formatDemand,
	}
}

// Thresholds is the schema of ATP thresholds.
func Thresholds() Schema[Row] {
	return Schema[Row]{
		Name:       "thresholds",
		Label:      "Threshold",
		Plural:     "thresholds",
		ListPath:   "/atpThresholds/all",
		MutatePath: "/atpThresholds",
		IDField:    "thresholdId",
		SearchBy:   "item",
		Fields: []Field{
			itemLookup,
			locationLookup,
			{Name: "minThreshold", Label: "Minimum", Kind: FieldNumber},
			{Name: "maxThreshold", Label: "Maximum", Kind: FieldNumber},
		},
		Required: []string{"itemId", "locationId", "minThreshold", "maxThreshold"},
		NonNegative: []NumericRule{
			{Field: "minThreshold", Message: "Threshold Should not be negitive."},
			{Field: "maxThreshold", Message: "Threshold Should not be negitive."},
		},
		Columns: []string{"Threshold ID", "Item ID", "Location ID", "Minimum", "Maximum"},
		Format:  formatThreshold,
	}
}

// Rupees renders an amount the way prices appear in the tables: ₹100, ₹99.50.
func Rupees(d decimal.Decimal) string {
	if d.IsInteger() {
		return "₹" + d.String()
	}
	return "₹" + d.StringFixed(2)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// rawRow is the fallback when a record does not match its typed view: the
// named fields are shown as the API sent them.
func rawRow(rec data.Record, idField string, fields ...string) Row {
	row := Row{ID: rec.String(idField), Cells: []string{rec.String(idField)}}
	for _, f := range fields {
		row.Cells = append(row.Cells, rec.String(f))
	}
	return row
}

func formatItem(rec data.Record) Row {
	var it data.Item
	if err := rec.Decode(&it); err != nil {
		return rawRow(rec, "itemId", "itemDescription", "category", "type", "status", "price")
	}
	return Row{ID: string(it.ItemID), Cells: []string{
		string(it.ItemID), it.ItemDescription, it.Category, it.Type, it.Status, Rupees(it.Price),
		yesNo(it.PickupAllowed), yesNo(it.ShippingAllowed), yesNo(it.DeliveryAllowed),
	}}
}

func formatLocation(rec data.Record) Row {
	var loc data.Location
	if err := rec.Decode(&loc); err != nil {
		return rawRow(rec, "locationId", "locationDesc", "locationType", "city", "state")
	}
	return Row{ID: string(loc.LocationID), Cells: []string{
		string(loc.LocationID), loc.LocationDesc, loc.LocationType, loc.City, loc.State,
		yesNo(loc.PickupAllowed), yesNo(loc.ShippingAllowed), yesNo(loc.DeliveryAllowed),
	}}
}

func formatSupply(rec data.Record) Row {
	var s data.Supply
	if err := rec.Decode(&s); err != nil {
		return rawRow(rec, "supplyId", "itemId", "locationId", "supplyType", "quantity")
	}
	return Row{ID: string(s.SupplyID), Cells: []string{
		string(s.SupplyID), string(s.ItemID), string(s.LocationID), s.SupplyType, s.Quantity.String(),
	}}
}

func formatDemand(rec data.Record) Row {
	var d data.Demand
	if err := rec.Decode(&d); err != nil {
		return rawRow(rec, "demandId", "itemId", "locationId", "demandType", "quantity")
	}
	return Row{ID: string(d.DemandID), Cells: []string{
		string(d.DemandID), string(d.ItemID), string(d.LocationID), d.DemandType, d.Quantity.String(),
	}}
}

func formatThreshold(rec data.Record) Row {
	var th data.Threshold
	if err := rec.Decode(&th); err != nil {
		return rawRow(rec, "thresholdId", "itemId", "locationId", "minThreshold", "maxThreshold")
	}
	return Row{ID: string(th.ThresholdID), Cells: []string{
		string(th.ThresholdID), string(th.ItemID), string(th.LocationID), th.MinThreshold.String(), th.MaxThreshold.String(),
	}}
}

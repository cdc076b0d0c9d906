// Package data provides the record and page types exchanged with the remote
// inventory API, plus the typed views the console formats rows from.
package data

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Record is one resource row as the API returns it: an opaque mapping from
// field name to scalar value. Every record carries its server-assigned
// identifier field (itemId, locationId, supplyId, demandId or thresholdId).
type Record map[string]any

// Clone returns a shallow copy of r. Dialog drafts are always clones so that
// editing a draft never mutates the row shown in the table.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// String returns field as text, or "" when it is absent or nil.
func (r Record) String(field string) string {
	v, ok := r[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		return decimal.NewFromFloat(t).String()
	case decimal.Decimal:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

// Blank reports whether field is missing, nil, false or an all-space string.
// Numeric zero is a value, not a blank.
func (r Record) Blank(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return true
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	}
	return false
}

// Decimal parses field as a decimal number. ok is false if the field is blank
// or not numeric.
func (r Record) Decimal(field string) (d decimal.Decimal, ok bool) {
	v, present := r[field]
	if !present || v == nil {
		return decimal.Zero, false
	}
	switch t := v.(type) {
	case decimal.Decimal:
		return t, true
	case float64:
		return decimal.NewFromFloat(t), true
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int64:
		return decimal.NewFromInt(t), true
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	}
	return decimal.Zero, false
}

// Decode converts r into one of the typed views below (or any JSON-tagged
// struct) by round-tripping through JSON.
func (r Record) Decode(dst any) error {
	js, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(js))
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// ID is a server-assigned identifier. The API is not consistent about whether
// identifiers are JSON strings ("000001") or numbers (42); ID accepts both.
type ID string

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Item is a sellable product.
type Item struct {
	ItemID          ID              `json:"itemId"`
	ItemDescription string          `json:"itemDescription"`
	Category        string          `json:"category"`
	Type            string          `json:"type"`
	Status          string          `json:"status"`
	Price           decimal.Decimal `json:"price"`
	PickupAllowed   bool            `json:"pickupAllowed"`
	ShippingAllowed bool            `json:"shippingAllowed"`
	DeliveryAllowed bool            `json:"deliveryAllowed"`
}

// Location is a store, warehouse or distribution center.
type Location struct {
	LocationID      ID     `json:"locationId"`
	LocationDesc    string `json:"locationDesc"`
	LocationType    string `json:"locationType"`
	PickupAllowed   bool   `json:"pickupAllowed"`
	ShippingAllowed bool   `json:"shippingAllowed"`
	DeliveryAllowed bool   `json:"deliveryAllowed"`
	AddressLine1    string `json:"addressLine1"`
	City            string `json:"city"`
	State           string `json:"state"`
	Country         string `json:"country"`
	PinCode         string `json:"pinCode"`
}

// Supply is on-hand or inbound stock of an item at a location.
type Supply struct {
	SupplyID   ID              `json:"supplyId"`
	ItemID     ID              `json:"itemId"`
	LocationID ID              `json:"locationId"`
	SupplyType string          `json:"supplyType"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Demand is confirmed or planned consumption of an item at a location.
type Demand struct {
	DemandID   ID              `json:"demandId"`
	ItemID     ID              `json:"itemId"`
	LocationID ID              `json:"locationId"`
	DemandType string          `json:"demandType"`
	Quantity   decimal.Decimal `json:"quantity"`
}

// Threshold bounds the available-to-promise quantity of an item at a location.
type Threshold struct {
	ThresholdID  ID              `json:"thresholdId"`
	ItemID       ID              `json:"itemId"`
	LocationID   ID              `json:"locationId"`
	MinThreshold decimal.Decimal `json:"minThreshold"`
	MaxThreshold decimal.Decimal `json:"maxThreshold"`
}

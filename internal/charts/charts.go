// Package charts reshapes the dashboard's aggregate API payloads into the
// row-per-category structures the browser charting library draws. Every
// function is pure; fetching is done by the dashboard handler.
package charts

import (
	"encoding/json"
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/aoideee/inventory-console/internal/data"
)

// Series key prefixes of the stacked location chart.
const (
	SupplyPrefix = "supply:"
	DemandPrefix = "demand:"
)

// LocationStock is one element of /locations/stackedBarData.
type LocationStock struct {
	LocationDesc  string                     `json:"locationDesc"`
	SupplyDetails map[string]decimal.Decimal `json:"supplyDetails"`
	DemandDetails map[string]decimal.Decimal `json:"demandDetails"`
}

// StackedByLocation returns one object per location, with a "location" key
// for the axis tick and one "supply:<type>" or "demand:<type>" key per
// quantity. Quantities are json.Number so they encode unquoted. Input order
// is kept.
func StackedByLocation(stock []LocationStock) []map[string]any {
	out := make([]map[string]any, 0, len(stock))
	for _, s := range stock {
		row := map[string]any{"location": s.LocationDesc}
		for typ, qty := range s.SupplyDetails {
			row[SupplyPrefix+typ] = number(qty)
		}
		for typ, qty := range s.DemandDetails {
			row[DemandPrefix+typ] = number(qty)
		}
		out = append(out, row)
	}
	return out
}

// SeriesKeys returns the sorted union of series keys across stock, supply
// keys first, so the legend is stable between renders.
func SeriesKeys(stock []LocationStock) []string {
	supply := map[string]bool{}
	demand := map[string]bool{}
	for _, s := range stock {
		for typ := range s.SupplyDetails {
			supply[SupplyPrefix+typ] = true
		}
		for typ := range s.DemandDetails {
			demand[DemandPrefix+typ] = true
		}
	}
	return append(sortedKeys(supply), sortedKeys(demand)...)
}

// number renders d as a bare JSON number.
func number(d decimal.Decimal) json.Number { return json.Number(d.String()) }

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ItemPoint is one element of /availability/getAvailabilityScatterData.
type ItemPoint struct {
	ItemPrice      decimal.Decimal `json:"itemPrice"`
	SupplyQuantity decimal.Decimal `json:"supplyQuantity"`
	DemandQuantity decimal.Decimal `json:"demandQuantity"`
	ItemName       string          `json:"itemName"`
}

// Point is one scatter dot: price on x, quantity on y.
type Point struct {
	X    decimal.Decimal `json:"x"`
	Y    decimal.Decimal `json:"y"`
	Name string          `json:"name"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		X    json.Number `json:"x"`
		Y    json.Number `json:"y"`
		Name string      `json:"name"`
	}{number(p.X), number(p.Y), p.Name})
}

// ScatterSeries is a named set of points.
type ScatterSeries struct {
	Name   string  `json:"name"`
	Points []Point `json:"data"`
}

// ItemScatter splits points into a "Supply" and a "Demand" series.
func ItemScatter(points []ItemPoint) []ScatterSeries {
	supply := ScatterSeries{Name: "Supply", Points: make([]Point, 0, len(points))}
	demand := ScatterSeries{Name: "Demand", Points: make([]Point, 0, len(points))}
	for _, p := range points {
		supply.Points = append(supply.Points, Point{X: p.ItemPrice, Y: p.SupplyQuantity, Name: p.ItemName})
		demand.Points = append(demand.Points, Point{X: p.ItemPrice, Y: p.DemandQuantity, Name: p.ItemName})
	}
	return []ScatterSeries{supply, demand}
}

// Bar is one category of a bar chart.
type Bar struct {
	Category string          `json:"category"`
	Value    decimal.Decimal `json:"value"`
}

func (b Bar) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Category string      `json:"category"`
		Value    json.Number `json:"value"`
	}{b.Category, number(b.Value)})
}

// availabilityKeys are identifiers in the availability payload, never plotted.
var availabilityKeys = map[string]bool{"itemId": true, "locationId": true}

// AvailabilityBars turns an availability v1 or v2 payload into one bar per
// numeric field, ordered by field name. Identifiers and non-numeric fields
// are skipped, so both versions share the same chart.
func AvailabilityBars(payload data.Record) []Bar {
	bars := []Bar{}
	for key := range payload {
		if availabilityKeys[key] {
			continue
		}
		if v, ok := payload.Decimal(key); ok {
			bars = append(bars, Bar{Category: Humanize(key), Value: v})
		}
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Category < bars[j].Category })
	return bars
}

// Tile is one counter on the dashboard.
type Tile struct {
	Key   string
	Label string
	Value decimal.Decimal
}

// DashboardTiles turns the /dashboard counts into labelled tiles, ordered by
// key. Non-numeric entries are ignored.
func DashboardTiles(payload data.Record) []Tile {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tiles := make([]Tile, 0, len(keys))
	for _, k := range keys {
		if v, ok := payload.Decimal(k); ok {
			tiles = append(tiles, Tile{Key: k, Label: Humanize(k), Value: v})
		}
	}
	return tiles
}

// Humanize turns a camelCase API key into a title: "totalItems" becomes
// "Total Items", "atpThresholds" becomes "Atp Thresholds".
func Humanize(key string) string {
	var b strings.Builder
	for i, r := range key {
		switch {
		case i == 0:
			b.WriteRune(unicode.ToUpper(r))
		case unicode.IsUpper(r):
			b.WriteByte(' ')
			b.WriteRune(r)
		case r == '_':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

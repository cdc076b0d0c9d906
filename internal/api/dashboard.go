package api

import (
	"context"
	"net/url"
)

// Dashboard fetches the summary counts shown as tiles.
func (c *Client) Dashboard(ctx context.Context) (*Envelope, error) {
	return c.Get(ctx, "/dashboard", nil)
}

// ScatterData fetches price/supply/demand points for the items stocked at a
// location.
func (c *Client) ScatterData(ctx context.Context, locationID string) (*Envelope, error) {
	return c.Get(ctx, "/availability/getAvailabilityScatterData", url.Values{"locationId": {locationID}})
}

// StackedBarData fetches supply and demand totals per location.
func (c *Client) StackedBarData(ctx context.Context) (*Envelope, error) {
	return c.Get(ctx, "/locations/stackedBarData", nil)
}

// Availability fetches available-to-promise figures for an item, optionally
// narrowed to one location. version is "v1" or "v2".
func (c *Client) Availability(ctx context.Context, version, item, location string) (*Envelope, error) {
	path := "/availability/" + version + "/" + url.PathEscape(item)
	if location != "" {
		path += "/" + url.PathEscape(location)
	}
	return c.Get(ctx, path, nil)
}

// internal/data/models.go
package data

import (
	"errors"
	"math"
	"net/url"
	"strconv"
)

// PageSize is the fixed number of rows the console asks for on every list
// screen. The API only receives the page index; it applies the same size.
const PageSize = 8

// ErrRecordNotFound is returned when a record id is not among the rows the
// console currently holds.
var ErrRecordNotFound = errors.New("record not found")

// Page is the payload of every list endpoint.
type Page struct {
	Content []Record `json:"content"`
	Page    PageInfo `json:"page"`
}

// PageInfo carries the server's view of the whole collection.
type PageInfo struct {
	TotalElements int `json:"totalElements"`
	Size          int `json:"size,omitempty"`
	Number        int `json:"number,omitempty"`
	TotalPages    int `json:"totalPages,omitempty"`
}

// EmptyPage is the safe default a table falls back to after any failure.
func EmptyPage() Page {
	return Page{Content: []Record{}}
}

// Filters holds the list query a table screen sends.
type Filters struct {
	Page     int    // Zero-based page index
	Search   string // Free-text search term, already validated
	SearchBy string // Optional field the API searches on ("item" for supply, demand, thresholds)
}

// Query encodes f as the list endpoint's query string values. page and search
// are always present, even when search is empty.
func (f Filters) Query() url.Values {
	qs := url.Values{}
	qs.Set("page", strconv.Itoa(f.Page))
	qs.Set("search", f.Search)
	if f.SearchBy != "" {
		qs.Set("searchBy", f.SearchBy)
	}
	return qs
}

// Metadata contains the pager state rendered under every table.
type Metadata struct {
	CurrentPage  int `json:"current_page"`
	PageSize     int `json:"page_size"`
	FirstPage    int `json:"first_page"`
	LastPage     int `json:"last_page"`
	TotalRecords int `json:"total_records"`
}

// CalculateMetadata computes pager metadata from the total record count and the
// zero-based page index.
func CalculateMetadata(totalRecords, page, pageSize int) Metadata {
	if totalRecords <= 0 || pageSize <= 0 {
		return Metadata{CurrentPage: page, PageSize: pageSize}
	}
	return Metadata{
		CurrentPage:  page,
		PageSize:     pageSize,
		FirstPage:    0,
		LastPage:     int(math.Ceil(float64(totalRecords)/float64(pageSize))) - 1,
		TotalRecords: totalRecords,
	}
}

// HasPrev reports whether a page exists before the current one.
func (m Metadata) HasPrev() bool { return m.CurrentPage > m.FirstPage }

// HasNext reports whether a page exists after the current one.
func (m Metadata) HasNext() bool { return m.CurrentPage < m.LastPage }

// PrevPage and NextPage return the neighbouring page indexes.
func (m Metadata) PrevPage() int { return m.CurrentPage - 1 }

func (m Metadata) NextPage() int { return m.CurrentPage + 1 }

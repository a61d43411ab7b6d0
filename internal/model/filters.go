package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FilterSet holds structured search parameters extracted from free text.
// All fields are optional and independently present. ForeignCurrency is a
// terminal flag: when set, Amount and Currency describe the offending value
// and no other filters are populated.
type FilterSet struct {
	SearchQuery   string   `json:"search_query,omitempty"`
	UnitPriceFrom *int     `json:"unit_price_from,omitempty"`
	UnitPriceTo   *int     `json:"unit_price_to,omitempty"`
	UnitBedrooms  string   `json:"unit_bedrooms,omitempty"`
	UnitTypes     []string `json:"unit_types,omitempty"`
	Status        []string `json:"status,omitempty"`
	SaleStatus    []string `json:"sale_status,omitempty"`
	Developers    []string `json:"developer_name_nlp,omitempty"`

	ForeignCurrency bool   `json:"foreign_currency,omitempty"`
	Amount          string `json:"amount,omitempty"`
	Currency        string `json:"currency,omitempty"`

	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
}

// Params returns the allow-listed, nil-filtered query parameters for the
// listing API. List values are joined as CSV, matching the upstream contract.
func (f *FilterSet) Params() map[string]string {
	params := map[string]string{}
	if f == nil {
		return params
	}
	if f.SearchQuery != "" {
		params["search_query"] = f.SearchQuery
	}
	if f.UnitPriceFrom != nil {
		params["unit_price_from"] = strconv.Itoa(*f.UnitPriceFrom)
	}
	if f.UnitPriceTo != nil {
		params["unit_price_to"] = strconv.Itoa(*f.UnitPriceTo)
	}
	if f.UnitBedrooms != "" {
		params["unit_bedrooms"] = f.UnitBedrooms
	}
	if len(f.UnitTypes) > 0 {
		params["unit_types"] = strings.Join(f.UnitTypes, ",")
	}
	if len(f.Status) > 0 {
		params["status"] = strings.Join(f.Status, ",")
	}
	if len(f.SaleStatus) > 0 {
		params["sale_status"] = strings.Join(f.SaleStatus, ",")
	}
	if len(f.Developers) > 0 {
		params["developer_name_nlp"] = strings.Join(f.Developers, ",")
	}
	if f.Page > 0 {
		params["page"] = strconv.Itoa(f.Page)
	}
	if f.PerPage > 0 {
		params["per_page"] = strconv.Itoa(f.PerPage)
	}
	return params
}

// Fingerprint returns a stable hash of the sorted, nil-filtered filter set,
// used as the property cache key.
func (f *FilterSet) Fingerprint() string {
	params := f.Params()
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%s;", k, params[k])
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

// Map flattens the filter set into a filters_used payload.
func (f *FilterSet) Map() map[string]any {
	out := map[string]any{}
	if f == nil {
		return out
	}
	if f.SearchQuery != "" {
		out["search_query"] = f.SearchQuery
	}
	if f.UnitPriceFrom != nil {
		out["unit_price_from"] = *f.UnitPriceFrom
	}
	if f.UnitPriceTo != nil {
		out["unit_price_to"] = *f.UnitPriceTo
	}
	if f.UnitBedrooms != "" {
		out["unit_bedrooms"] = f.UnitBedrooms
	}
	if len(f.UnitTypes) > 0 {
		out["unit_types"] = f.UnitTypes
	}
	if len(f.Status) > 0 {
		out["status"] = f.Status
	}
	if len(f.SaleStatus) > 0 {
		out["sale_status"] = f.SaleStatus
	}
	if len(f.Developers) > 0 {
		out["developer_name_nlp"] = f.Developers
	}
	if f.ForeignCurrency {
		out["foreign_currency"] = true
		out["amount"] = f.Amount
		out["currency"] = f.Currency
	}
	if f.Page > 0 {
		out["page"] = f.Page
	}
	if f.PerPage > 0 {
		out["per_page"] = f.PerPage
	}
	return out
}

// Package render projects analysis results into display blocks. Projection
// is pure: no side effects, and the same result always yields the same
// blocks.
package render

import (
	"fmt"
	"math"
	"strconv"

	"github.com/zombor/receipt-analyzer/internal/analysis"
)

// NotFound is the fallback text for absent textual fields.
const NotFound = "Not found"

// Row is one labeled value in a display section. Badge is a confidence
// annotation, present only when the service reported a non-zero confidence.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Badge string `json:"badge,omitempty"`
}

// Section is a titled group of rows.
type Section struct {
	Title string `json:"title"`
	Rows  []Row  `json:"rows"`
}

// ItemView is one rendered line item. Details holds the quantity, unit
// price, and line total rows that were present on the wire; absent ones are
// omitted rather than filled with fallback text.
type ItemView struct {
	Description string   `json:"description"`
	Details     []string `json:"details,omitempty"`
}

// ItemsSection lists the rendered line items with their count.
type ItemsSection struct {
	Count int        `json:"count"`
	Items []ItemView `json:"items"`
}

// ReceiptView is the projection of one receipt record. Items is nil when
// the record carried no line items.
type ReceiptView struct {
	Merchant    Section       `json:"merchant"`
	Transaction Section       `json:"transaction"`
	Items       *ItemsSection `json:"items,omitempty"`
}

// Project renders the records of a successful result, in order.
func Project(records []analysis.Record) []ReceiptView {
	views := make([]ReceiptView, 0, len(records))
	for _, record := range records {
		views = append(views, projectRecord(record))
	}
	return views
}

func projectRecord(record analysis.Record) ReceiptView {
	view := ReceiptView{
		Merchant: Section{
			Title: "Merchant Information",
			Rows: []Row{
				{Label: "Name", Value: textOr(record.MerchantName), Badge: confidenceBadge(record.MerchantConfidence)},
				{Label: "Address", Value: textOr(record.MerchantAddress)},
				{Label: "Phone", Value: textOr(record.MerchantPhone)},
			},
		},
		Transaction: Section{
			Title: "Transaction Details",
			Rows: []Row{
				{Label: "Date", Value: textOr(record.TransactionDate)},
				{Label: "Time", Value: textOr(record.TransactionTime)},
				{Label: "Total", Value: moneyOr(record.Total), Badge: confidenceBadge(record.TotalConfidence)},
				{Label: "Subtotal", Value: moneyOr(record.Subtotal)},
				{Label: "Tax", Value: moneyOr(record.Tax)},
			},
		},
	}

	if len(record.Items) > 0 {
		section := &ItemsSection{
			Count: len(record.Items),
			Items: make([]ItemView, 0, len(record.Items)),
		}
		for i, item := range record.Items {
			section.Items = append(section.Items, projectItem(item, i))
		}
		view.Items = section
	}

	return view
}

func projectItem(item analysis.Item, index int) ItemView {
	view := ItemView{
		Description: fmt.Sprintf("Item %d", index+1),
	}
	if present(item.Description) {
		view.Description = *item.Description
	}
	if item.Quantity != nil {
		view.Details = append(view.Details, "Qty: "+strconv.FormatFloat(*item.Quantity, 'f', -1, 64))
	}
	if present(item.Price) {
		view.Details = append(view.Details, "@ $"+*item.Price)
	}
	if present(item.TotalPrice) {
		view.Details = append(view.Details, "$"+*item.TotalPrice)
	}
	return view
}

// present reports whether a textual field carries a value. An empty string
// counts as absent, the same as a missing key.
func present(value *string) bool {
	return value != nil && *value != ""
}

// textOr returns the value or the fallback text when absent.
func textOr(value *string) string {
	if !present(value) {
		return NotFound
	}
	return *value
}

// moneyOr prefixes a present monetary value with the currency symbol.
func moneyOr(value *string) string {
	if !present(value) {
		return NotFound
	}
	return "$" + *value
}

// confidenceBadge formats a confidence score as a rounded percentage. A
// missing or zero confidence yields no badge; absence is never treated as
// zero confidence.
func confidenceBadge(confidence *float64) string {
	if confidence == nil || *confidence == 0 {
		return ""
	}
	return fmt.Sprintf("%d%% confident", int(math.Round(*confidence*100)))
}

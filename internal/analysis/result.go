package analysis

import (
	"encoding/json"
	"fmt"
)

// Record is one extracted receipt from the analysis service. Every field is
// optional on the wire; absent fields stay nil and are never coerced to a
// zero value.
type Record struct {
	MerchantName       *string  `json:"merchant_name,omitempty"`
	MerchantConfidence *float64 `json:"merchant_confidence,omitempty"`
	MerchantAddress    *string  `json:"merchant_address,omitempty"`
	MerchantPhone      *string  `json:"merchant_phone,omitempty"`
	TransactionDate    *string  `json:"transaction_date,omitempty"`
	TransactionTime    *string  `json:"transaction_time,omitempty"`
	Total              *string  `json:"total,omitempty"`
	TotalConfidence    *float64 `json:"total_confidence,omitempty"`
	Subtotal           *string  `json:"subtotal,omitempty"`
	Tax                *string  `json:"tax,omitempty"`
	Items              []Item   `json:"items,omitempty"`
}

// Item is a single line item on a receipt.
type Item struct {
	Description *string  `json:"description,omitempty"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Price       *string  `json:"price,omitempty"`
	TotalPrice  *string  `json:"total_price,omitempty"`
}

// Result is a successful response from the analysis service. The raw
// response body is retained so exports stay byte-faithful to what the
// service returned.
type Result struct {
	Success bool     `json:"success"`
	Records []Record `json:"data"`

	raw json.RawMessage
}

// ParseResult decodes a service response body into a Result, keeping the
// verbatim body for later export.
func ParseResult(body []byte) (*Result, error) {
	var result Result
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decoding analysis response: %w", err)
	}
	result.raw = append(json.RawMessage(nil), body...)
	return &result, nil
}

// Raw returns the verbatim response body the result was parsed from, or nil
// if the result was constructed directly.
func (r *Result) Raw() []byte {
	return r.raw
}

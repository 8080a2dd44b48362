package marketplace

// orderResponse is the EZManage order payload. Decoding is strict: fields
// the schema does not declare fail the fetch rather than being dropped,
// so a provider-side schema change surfaces as an explicit error.
type orderResponse struct {
	UUID        string         `json:"uuid"`
	OrderNumber string         `json:"order_number"`
	Caterer     catererInfo    `json:"caterer"`
	Event       eventInfo      `json:"event"`
	Totals      orderTotals    `json:"totals"`
	LineItems   []lineItemInfo `json:"line_items"`
}

// catererInfo identifies the fulfilling caterer
type catererInfo struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// eventInfo carries the catering event timing
type eventInfo struct {
	// Timestamp is RFC 3339
	Timestamp string `json:"timestamp"`
}

// orderTotals carries the marketplace's recorded order amounts
type orderTotals struct {
	SubTotal amountInfo `json:"sub_total"`
	TotalDue amountInfo `json:"total_due"`
}

// amountInfo is a marketplace monetary amount in currency subunits
type amountInfo struct {
	Subunits int64  `json:"subunits"`
	Currency string `json:"currency"`
}

// lineItemInfo is one priced line on a marketplace order
type lineItemInfo struct {
	Name       string     `json:"name"`
	TotalInUsd amountInfo `json:"total_in_usd"`
}

// errorResponse is the EZManage error payload
type errorResponse struct {
	Error string `json:"error"`
}

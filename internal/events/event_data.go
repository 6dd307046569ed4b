package events

// Typed payloads for the event envelope. Amounts and quantities are
// carried as decimal strings so the serialized form stays exact.

// StockAddedData contains data for StockAdded events.
type StockAddedData struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Grade  string `json:"grade,omitempty"`
}

// EventType returns the event type for StockAddedData.
func (d *StockAddedData) EventType() EventType { return StockAdded }

// TransactionRecordedData contains data for TransactionRecorded events.
type TransactionRecordedData struct {
	PortfolioID int64  `json:"portfolio_id"`
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
}

// EventType returns the event type for TransactionRecordedData.
func (d *TransactionRecordedData) EventType() EventType { return TransactionRecorded }

// TargetSetData contains data for TargetSet events.
type TargetSetData struct {
	Symbol       string `json:"symbol"`
	PivotPrice   string `json:"pivot_price"`
	FailurePrice string `json:"failure_price"`
	Currency     string `json:"currency"`
}

// EventType returns the event type for TargetSetData.
func (d *TargetSetData) EventType() EventType { return TargetSet }

// BalanceRecordedData contains data for BalanceRecorded events.
type BalanceRecordedData struct {
	PortfolioID int64  `json:"portfolio_id"`
	Value       string `json:"value"`
	Currency    string `json:"currency"`
}

// EventType returns the event type for BalanceRecordedData.
func (d *BalanceRecordedData) EventType() EventType { return BalanceRecorded }

// PortfolioValuedData contains data for PortfolioValued events.
type PortfolioValuedData struct {
	PortfolioID int64  `json:"portfolio_id"`
	TotalValue  string `json:"total_value"`
	Currency    string `json:"currency"`
	Positions   int    `json:"positions"`
}

// EventType returns the event type for PortfolioValuedData.
func (d *PortfolioValuedData) EventType() EventType { return PortfolioValued }

// JournalEntryAddedData contains data for JournalEntryAdded events.
type JournalEntryAddedData struct {
	EntryID int64  `json:"entry_id"`
	Title   string `json:"title"`
}

// EventType returns the event type for JournalEntryAddedData.
func (d *JournalEntryAddedData) EventType() EventType { return JournalEntryAdded }

package api

// Item is one unit of input to a run.
type Item struct {
	// JSON carries the item's data as decoded from the input source
	JSON map[string]any `json:"json"`
}

// PairedItem links a result back to the input item it was produced from.
type PairedItem struct {
	Item int `json:"item"`
}

// ItemResult is the output produced for one input item. Results are
// always returned in input order.
type ItemResult struct {
	// Payload is the operation result, or {"error": message} for a contained failure
	Payload map[string]any `json:"json"`

	// PairedItem holds the index of the source item
	PairedItem PairedItem `json:"pairedItem"`

	// Error is set when the item failed and failure tolerance was enabled
	Error string `json:"error,omitempty"`
}

// SourceItemIndex returns the index of the input item this result belongs to.
func (r ItemResult) SourceItemIndex() int {
	return r.PairedItem.Item
}

// Failed reports whether the item carries a contained failure.
func (r ItemResult) Failed() bool {
	return r.Error != ""
}

// NewItemResult creates a successful result for the item at index.
func NewItemResult(index int, payload map[string]any) ItemResult {
	return ItemResult{
		Payload:    payload,
		PairedItem: PairedItem{Item: index},
	}
}

// NewFailedItemResult creates a contained failure for the item at index.
// The payload holds only the error message.
func NewFailedItemResult(index int, err error) ItemResult {
	return ItemResult{
		Payload:    map[string]any{"error": err.Error()},
		PairedItem: PairedItem{Item: index},
		Error:      err.Error(),
	}
}

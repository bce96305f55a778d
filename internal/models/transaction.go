package models

// Transaction types as the backend reports them.
const (
	TransactionTypePayment    = "payment"
	TransactionTypeSettlement = "settlement"
)

// Transaction is a recorded payment or settlement between two member names
// within a trip. Immutable once created from the client's perspective; the
// only mutation is an explicit soft delete.
type Transaction struct {
	ID           string `json:"id"`
	TripID       string `json:"tripId"`
	PayerName    string `json:"payerName"`
	ReceiverName string `json:"receiverName"`

	// Amount is a decimal string exactly as the backend sent it. The
	// client never parses it into a float; formatting for display is the
	// rendering layer's problem.
	Amount string `json:"amount"`

	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
	CreatedAt   string `json:"createdAt"`
	IsDeleted   bool   `json:"isDeleted,omitempty"`
}

// Settlement is a server-computed suggestion: "From should pay To Amount" to
// net out the trip's balances. The client only displays these; it never
// creates or recomputes them.
type Settlement struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

package model

type Progress struct {
	CompletedSteps int `json:"completed_steps"`
	TotalSteps     int `json:"total_steps"`
	Percentage     int `json:"percentage"`
}

type StatusEvent struct {
	Status    string `json:"status"`
	Phase     string `json:"phase"`
	Timestamp string `json:"timestamp"`
	Note      string `json:"note,omitempty"`
}

type OnRampTransaction struct {
	ID                  string        `json:"id"`
	Amount              float64       `json:"amount"`
	SourceCurrency      string        `json:"source_currency"`
	TargetCurrency      string        `json:"target_currency"`
	DestinationAddress  string        `json:"destination_address"`
	Status              string        `json:"status"`
	Phase               string        `json:"phase"`
	PaymentReference    string        `json:"payment_reference"`
	ConversionReference string        `json:"conversion_reference,omitempty"`
	SettlementReference string        `json:"settlement_reference,omitempty"`
	TargetAmount        float64       `json:"target_amount,omitempty"`
	ExchangeRate        float64       `json:"exchange_rate,omitempty"`
	Progress            Progress      `json:"progress"`
	StatusHistory       []StatusEvent `json:"status_history"`
	CreatedAt           string        `json:"created_at"`
	UpdatedAt           string        `json:"updated_at"`
}

type InitiateOnRampRequest struct {
	Amount             float64 `json:"amount"`
	Currency           string  `json:"currency"`
	DestinationAddress string  `json:"destination_address"`
	Note               string  `json:"note"`
}

type InitiateOnRampResponse struct {
	TransactionID    string   `json:"transaction_id"`
	PaymentReference string   `json:"payment_reference"`
	ClientSecret     string   `json:"client_secret"`
	Amount           float64  `json:"amount"`
	Currency         string   `json:"currency"`
	Status           string   `json:"status"`
	Progress         Progress `json:"progress"`
}

// ConfirmPaymentRequest is keyed by the transaction id. Processor webhooks
// only carry the processor's own reference, so payment_reference works as a
// fallback key when transaction_id is empty.
type ConfirmPaymentRequest struct {
	TransactionID    string `json:"transaction_id"`
	PaymentReference string `json:"payment_reference"`
}

type ConfirmPaymentResponse struct {
	Transaction OnRampTransaction `json:"transaction"`
}

type GetOnRampStatusRequest struct {
	TransactionID string `json:"transaction_id"`
}

type GetOnRampStatusResponse struct {
	Transaction OnRampTransaction `json:"transaction"`
}

type GetOnRampTransactionsRequest struct {
	Status string `json:"status"`
}

type GetOnRampTransactionsResponse struct {
	Transactions []OnRampTransaction `json:"transactions"`
	Count        int                 `json:"count"`
}

package dto

// TransactionRequest creates or updates a financial transaction.
type TransactionRequest struct {
	Type        string  `json:"type" validate:"required,oneof=INCOME EXPENSE"`
	Category    string  `json:"category" validate:"required"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
}

package models

import "time"

// TransactionType enumerates bookkeeping entry directions.
type TransactionType string

const (
	TransactionIncome  TransactionType = "INCOME"
	TransactionExpense TransactionType = "EXPENSE"
)

// Transaction represents a financial bookkeeping entry.
type Transaction struct {
	ID            string          `db:"id" json:"id"`
	CompanyID     string          `db:"company_id" json:"company_id"`
	AppointmentID *string         `db:"appointment_id" json:"appointment_id,omitempty"`
	Type          TransactionType `db:"type" json:"type"`
	Category      string          `db:"category" json:"category"`
	Description   string          `db:"description" json:"description"`
	Amount        float64         `db:"amount" json:"amount"`
	Date          time.Time       `db:"date" json:"date"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// TransactionFilter captures listing criteria for transactions.
type TransactionFilter struct {
	CompanyID string
	Type      string
	Category  string
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CategoryTotal aggregates transaction amounts per category.
type CategoryTotal struct {
	Category string  `db:"category" json:"category"`
	Type     string  `db:"type" json:"type"`
	Total    float64 `db:"total" json:"total"`
}

// FinanceSummary aggregates a period's bookkeeping totals.
type FinanceSummary struct {
	Income     float64         `json:"income"`
	Expense    float64         `json:"expense"`
	Balance    float64         `json:"balance"`
	ByCategory []CategoryTotal `json:"by_category"`
}

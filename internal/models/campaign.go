package models

import "time"

// CampaignStatus enumerates the marketing campaign lifecycle.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "DRAFT"
	CampaignQueued    CampaignStatus = "QUEUED"
	CampaignSending   CampaignStatus = "SENDING"
	CampaignCompleted CampaignStatus = "COMPLETED"
	CampaignFailed    CampaignStatus = "FAILED"
)

// Campaign represents a WhatsApp marketing campaign. The recipient list is
// snapshotted at dispatch time so later customer edits do not change it.
type Campaign struct {
	ID          string         `db:"id" json:"id"`
	CompanyID   string         `db:"company_id" json:"company_id"`
	Name        string         `db:"name" json:"name"`
	Message     string         `db:"message" json:"message"`
	Status      CampaignStatus `db:"status" json:"status"`
	TotalCount  int            `db:"total_count" json:"total_count"`
	SentCount   int            `db:"sent_count" json:"sent_count"`
	FailedCount int            `db:"failed_count" json:"failed_count"`
	StartedAt   *time.Time     `db:"started_at" json:"started_at,omitempty"`
	FinishedAt  *time.Time     `db:"finished_at" json:"finished_at,omitempty"`
	CreatedBy   string         `db:"created_by" json:"created_by"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// RecipientStatus enumerates per-recipient delivery states.
type RecipientStatus string

const (
	RecipientPending RecipientStatus = "PENDING"
	RecipientSent    RecipientStatus = "SENT"
	RecipientFailed  RecipientStatus = "FAILED"
)

// CampaignRecipient is one customer targeted by a campaign.
type CampaignRecipient struct {
	ID         string          `db:"id" json:"id"`
	CampaignID string          `db:"campaign_id" json:"campaign_id"`
	CustomerID string          `db:"customer_id" json:"customer_id"`
	Phone      string          `db:"phone" json:"phone"`
	Status     RecipientStatus `db:"status" json:"status"`
	Error      *string         `db:"error" json:"error,omitempty"`
	SentAt     *time.Time      `db:"sent_at" json:"sent_at,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// CampaignFilter captures listing criteria for campaigns.
type CampaignFilter struct {
	CompanyID string
	Status    string
	Page      int
	PageSize  int
}

// RecipientCounts aggregates delivery progress for a campaign.
type RecipientCounts struct {
	Total   int `db:"total" json:"total"`
	Pending int `db:"pending" json:"pending"`
	Sent    int `db:"sent" json:"sent"`
	Failed  int `db:"failed" json:"failed"`
}

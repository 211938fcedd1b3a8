package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
)

// CampaignRepository provides persistence for campaigns and recipients.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository creates a new campaign repository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

const campaignColumns = "id, company_id, name, message, status, total_count, sent_count, failed_count, started_at, finished_at, created_by, created_at, updated_at"

const recipientColumns = "id, campaign_id, customer_id, phone, status, error, sent_at, created_at, updated_at"

// List returns campaigns with filtering and pagination.
func (r *CampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	base := "FROM campaigns WHERE company_id = $1"
	args := []interface{}{filter.CompanyID}
	var conditions []string

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", campaignColumns, base, size, offset)
	var campaigns []models.Campaign
	if err := r.db.SelectContext(ctx, &campaigns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}

	return campaigns, total, nil
}

// FindByID loads a campaign scoped to its company.
func (r *CampaignRepository) FindByID(ctx context.Context, companyID, id string) (*models.Campaign, error) {
	query := fmt.Sprintf("SELECT %s FROM campaigns WHERE company_id = $1 AND id = $2 LIMIT 1", campaignColumns)
	var campaign models.Campaign
	if err := r.db.GetContext(ctx, &campaign, query, companyID, id); err != nil {
		return nil, err
	}
	return &campaign, nil
}

// Create stores a new campaign in DRAFT state.
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now

	const query = `INSERT INTO campaigns (id, company_id, name, message, status, total_count, sent_count, failed_count, created_by, created_at, updated_at) VALUES (:id, :company_id, :name, :message, :status, :total_count, :sent_count, :failed_count, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, campaign); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// UpdateStatus transitions a campaign's lifecycle state.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, companyID, id string, status models.CampaignStatus) error {
	const query = `UPDATE campaigns SET status = $3, updated_at = $4 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update campaign status: %w", err)
	}
	return nil
}

// MarkStarted transitions a campaign to SENDING and records dispatch totals.
func (r *CampaignRepository) MarkStarted(ctx context.Context, companyID, id string, total int, startedAt time.Time) error {
	const query = `UPDATE campaigns SET status = $3, total_count = $4, started_at = $5, updated_at = $5 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, models.CampaignSending, total, startedAt); err != nil {
		return fmt.Errorf("mark campaign started: %w", err)
	}
	return nil
}

// MarkFinished transitions a campaign to its terminal state and snapshots the
// delivery counters.
func (r *CampaignRepository) MarkFinished(ctx context.Context, companyID, id string, status models.CampaignStatus, sent, failed int, finishedAt time.Time) error {
	const query = `UPDATE campaigns SET status = $3, sent_count = $4, failed_count = $5, finished_at = $6, updated_at = $6 WHERE company_id = $1 AND id = $2`
	if _, err := r.db.ExecContext(ctx, query, companyID, id, status, sent, failed, finishedAt); err != nil {
		return fmt.Errorf("mark campaign finished: %w", err)
	}
	return nil
}

// CreateRecipients bulk-inserts the recipient snapshot in one transaction.
func (r *CampaignRepository) CreateRecipients(ctx context.Context, recipients []models.CampaignRecipient) error {
	if len(recipients) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create recipients: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for i := range recipients {
		recipient := recipients[i]
		if recipient.ID == "" {
			recipient.ID = uuid.NewString()
		}
		if recipient.CreatedAt.IsZero() {
			recipient.CreatedAt = now
		}
		recipient.UpdatedAt = now

		if _, err = tx.NamedExecContext(ctx, `INSERT INTO campaign_recipients (id, campaign_id, customer_id, phone, status, created_at, updated_at) VALUES (:id, :campaign_id, :customer_id, :phone, :status, :created_at, :updated_at)`, &recipient); err != nil {
			return fmt.Errorf("insert campaign recipient: %w", err)
		}
		recipients[i] = recipient
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create recipients: %w", err)
	}
	return nil
}

// FindRecipient loads one recipient row.
func (r *CampaignRepository) FindRecipient(ctx context.Context, id string) (*models.CampaignRecipient, error) {
	query := fmt.Sprintf("SELECT %s FROM campaign_recipients WHERE id = $1 LIMIT 1", recipientColumns)
	var recipient models.CampaignRecipient
	if err := r.db.GetContext(ctx, &recipient, query, id); err != nil {
		return nil, err
	}
	return &recipient, nil
}

// ListRecipients returns every recipient of a campaign.
func (r *CampaignRepository) ListRecipients(ctx context.Context, campaignID string) ([]models.CampaignRecipient, error) {
	query := fmt.Sprintf("SELECT %s FROM campaign_recipients WHERE campaign_id = $1 ORDER BY created_at ASC", recipientColumns)
	var recipients []models.CampaignRecipient
	if err := r.db.SelectContext(ctx, &recipients, query, campaignID); err != nil {
		return nil, fmt.Errorf("list campaign recipients: %w", err)
	}
	return recipients, nil
}

// UpdateRecipientStatus records a delivery outcome for one recipient.
func (r *CampaignRepository) UpdateRecipientStatus(ctx context.Context, id string, status models.RecipientStatus, sendErr *string, sentAt *time.Time) error {
	const query = `UPDATE campaign_recipients SET status = $2, error = $3, sent_at = $4, updated_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, sendErr, sentAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update recipient status: %w", err)
	}
	return nil
}

// RecipientCounts aggregates delivery progress for a campaign.
func (r *CampaignRepository) RecipientCounts(ctx context.Context, campaignID string) (*models.RecipientCounts, error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'PENDING') AS pending, COUNT(*) FILTER (WHERE status = 'SENT') AS sent, COUNT(*) FILTER (WHERE status = 'FAILED') AS failed FROM campaign_recipients WHERE campaign_id = $1`
	var counts models.RecipientCounts
	if err := r.db.GetContext(ctx, &counts, query, campaignID); err != nil {
		return nil, fmt.Errorf("recipient counts: %w", err)
	}
	return &counts, nil
}

// CountActive returns how many campaigns are queued or sending.
func (r *CampaignRepository) CountActive(ctx context.Context, companyID string) (int, error) {
	const query = `SELECT COUNT(*) FROM campaigns WHERE company_id = $1 AND status IN ('QUEUED', 'SENDING')`
	var total int
	if err := r.db.GetContext(ctx, &total, query, companyID); err != nil {
		return 0, fmt.Errorf("count active campaigns: %w", err)
	}
	return total, nil
}

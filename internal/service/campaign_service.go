package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/jobs"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/lock"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/phone"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/whatsapp"
)

const campaignJobType = "campaign_recipient"

type campaignRepository interface {
	List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error)
	FindByID(ctx context.Context, companyID, id string) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	MarkStarted(ctx context.Context, companyID, id string, total int, startedAt time.Time) error
	MarkFinished(ctx context.Context, companyID, id string, status models.CampaignStatus, sent, failed int, finishedAt time.Time) error
	CreateRecipients(ctx context.Context, recipients []models.CampaignRecipient) error
	FindRecipient(ctx context.Context, id string) (*models.CampaignRecipient, error)
	ListRecipients(ctx context.Context, campaignID string) ([]models.CampaignRecipient, error)
	UpdateRecipientStatus(ctx context.Context, id string, status models.RecipientStatus, sendErr *string, sentAt *time.Time) error
	RecipientCounts(ctx context.Context, campaignID string) (*models.RecipientCounts, error)
}

type audienceResolver interface {
	ListForAudience(ctx context.Context, companyID string, birthMonth int, withUpcoming bool) ([]models.Customer, error)
}

type campaignQueue interface {
	Enqueue(job jobs.Job) error
}

type campaignLocker interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lock, bool, error)
}

type campaignJobPayload struct {
	CompanyID   string `json:"company_id"`
	CampaignID  string `json:"campaign_id"`
	RecipientID string `json:"recipient_id"`
}

// CampaignService runs WhatsApp marketing campaigns. The recipient list is
// snapshotted at dispatch, one delivery job per recipient; the last worker
// to finish flips the campaign into its terminal state under a Redis lock.
type CampaignService struct {
	repo      campaignRepository
	customers audienceResolver
	sender    whatsapp.Sender
	queue     campaignQueue
	locker    campaignLocker
	audit     auditLogger
	sendDelay time.Duration
	lockTTL   time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs a CampaignService.
func NewCampaignService(
	repo campaignRepository,
	customers audienceResolver,
	sender whatsapp.Sender,
	queue campaignQueue,
	locker campaignLocker,
	audit auditLogger,
	sendDelay time.Duration,
	lockTTL time.Duration,
	validate *validator.Validate,
	logger *zap.Logger,
) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Second
	}
	return &CampaignService{
		repo:      repo,
		customers: customers,
		sender:    sender,
		queue:     queue,
		locker:    locker,
		audit:     audit,
		sendDelay: sendDelay,
		lockTTL:   lockTTL,
		validator: validate,
		logger:    logger,
	}
}

// List returns campaigns for the tenant.
func (s *CampaignService) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	campaigns, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
	}
	return campaigns, total, nil
}

// Get loads one campaign.
func (s *CampaignService) Get(ctx context.Context, companyID, id string) (*models.Campaign, error) {
	campaign, err := s.repo.FindByID(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	return campaign, nil
}

// Create drafts a campaign and snapshots its audience. Later edits to the
// customer base do not change who receives this campaign.
func (s *CampaignService) Create(ctx context.Context, claims *models.JWTClaims, req dto.CreateCampaignRequest) (*models.Campaign, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}

	audience, err := s.customers.ListForAudience(ctx, claims.CompanyID, req.Audience.BirthMonth, req.Audience.WithUpcoming)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve campaign audience")
	}
	if len(audience) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "audience filter matched no customers with a phone on record")
	}

	campaign := &models.Campaign{
		CompanyID:  claims.CompanyID,
		Name:       req.Name,
		Message:    req.Message,
		Status:     models.CampaignDraft,
		TotalCount: len(audience),
		CreatedBy:  claims.UserID,
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}

	recipients := make([]models.CampaignRecipient, 0, len(audience))
	for _, customer := range audience {
		recipients = append(recipients, models.CampaignRecipient{
			CampaignID: campaign.ID,
			CustomerID: customer.ID,
			Phone:      phone.Normalize(customer.Phone),
			Status:     models.RecipientPending,
		})
	}
	if err := s.repo.CreateRecipients(ctx, recipients); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to snapshot campaign recipients")
	}

	return campaign, nil
}

// Dispatch queues delivery jobs for every pending recipient of a draft
// campaign.
func (s *CampaignService) Dispatch(ctx context.Context, claims *models.JWTClaims, id string) (*models.Campaign, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}

	campaign, err := s.Get(ctx, claims.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if campaign.Status != models.CampaignDraft {
		return nil, appErrors.Clone(appErrors.ErrConflict, "campaign has already been dispatched")
	}

	recipients, err := s.repo.ListRecipients(ctx, campaign.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign recipients")
	}
	if len(recipients) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "campaign has no recipients")
	}

	startedAt := time.Now().UTC()
	if err := s.repo.MarkStarted(ctx, claims.CompanyID, campaign.ID, len(recipients), startedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start campaign")
	}
	campaign.Status = models.CampaignSending
	campaign.TotalCount = len(recipients)
	campaign.StartedAt = &startedAt

	enqueueFailures := 0
	for _, recipient := range recipients {
		if recipient.Status != models.RecipientPending {
			continue
		}
		job := jobs.Job{
			ID:   recipient.ID,
			Type: campaignJobType,
			Payload: campaignJobPayload{
				CompanyID:   claims.CompanyID,
				CampaignID:  campaign.ID,
				RecipientID: recipient.ID,
			},
		}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue campaign recipient",
				zap.String("campaign_id", campaign.ID), zap.String("recipient_id", recipient.ID), zap.Error(err))
			// Never deliverable: without a queued job nothing would move
			// this recipient out of PENDING, which would leave the
			// campaign in SENDING forever.
			msg := "enqueue failed: " + err.Error()
			if updErr := s.repo.UpdateRecipientStatus(ctx, recipient.ID, models.RecipientFailed, &msg, nil); updErr != nil {
				s.logger.Warn("failed to record recipient failure", zap.Error(updErr))
			}
			enqueueFailures++
		}
	}
	if enqueueFailures > 0 {
		s.maybeFinalize(ctx, claims.CompanyID, campaign.ID)
	}

	s.emitDispatchAudit(ctx, claims, campaign)
	return campaign, nil
}

// Progress reports delivery counters for a campaign.
func (s *CampaignService) Progress(ctx context.Context, companyID, id string) (*dto.CampaignProgressResponse, error) {
	campaign, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.RecipientCounts(ctx, campaign.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign progress")
	}
	return &dto.CampaignProgressResponse{
		CampaignID: campaign.ID,
		Status:     string(campaign.Status),
		Total:      counts.Total,
		Sent:       counts.Sent,
		Failed:     counts.Failed,
		Pending:    counts.Pending,
	}, nil
}

// ProcessJob delivers the campaign message to one recipient, then attempts
// the finalization pass. Called by the worker pool.
func (s *CampaignService) ProcessJob(ctx context.Context, job jobs.Job) error {
	payload, ok := job.Payload.(campaignJobPayload)
	if !ok {
		return fmt.Errorf("unexpected payload type %T", job.Payload)
	}

	recipient, err := s.repo.FindRecipient(ctx, payload.RecipientID)
	if err != nil {
		return fmt.Errorf("load recipient %s: %w", payload.RecipientID, err)
	}
	if recipient.Status == models.RecipientSent {
		return nil
	}

	campaign, err := s.repo.FindByID(ctx, payload.CompanyID, payload.CampaignID)
	if err != nil {
		return fmt.Errorf("load campaign %s: %w", payload.CampaignID, err)
	}

	if s.sendDelay > 0 {
		timer := time.NewTimer(s.sendDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	if err := s.sender.SendText(ctx, recipient.Phone, campaign.Message); err != nil {
		// A retriable failure leaves the recipient PENDING so a later
		// attempt can still deliver; only the exhausted retry budget
		// turns it into a permanent FAILED and counts toward the
		// campaign's terminal state.
		if job.FinalAttempt {
			msg := err.Error()
			if updErr := s.repo.UpdateRecipientStatus(ctx, recipient.ID, models.RecipientFailed, &msg, nil); updErr != nil {
				s.logger.Warn("failed to record recipient failure", zap.Error(updErr))
			}
			s.maybeFinalize(ctx, payload.CompanyID, payload.CampaignID)
		}
		return fmt.Errorf("send to recipient %s: %w", recipient.ID, err)
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateRecipientStatus(ctx, recipient.ID, models.RecipientSent, nil, &now); err != nil {
		s.logger.Warn("recipient sent but status update failed", zap.Error(err))
	}

	s.maybeFinalize(ctx, payload.CompanyID, payload.CampaignID)
	return nil
}

// maybeFinalize flips the campaign into its terminal state once no pending
// recipients remain. A short Redis lock keyed by campaign id guarantees a
// single worker performs the transition; losing the lock means another
// worker is already finalizing, which is not an error.
func (s *CampaignService) maybeFinalize(ctx context.Context, companyID, campaignID string) {
	counts, err := s.repo.RecipientCounts(ctx, campaignID)
	if err != nil {
		s.logger.Warn("failed to load recipient counts", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}
	if counts.Pending > 0 {
		return
	}

	held, ok, err := s.locker.TryAcquire(ctx, "campaign:finalize:"+campaignID, s.lockTTL)
	if err != nil {
		s.logger.Warn("failed to acquire finalize lock", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}
	if !ok {
		return
	}
	defer func() {
		if err := held.Release(ctx); err != nil {
			s.logger.Warn("failed to release finalize lock", zap.String("campaign_id", campaignID), zap.Error(err))
		}
	}()

	campaign, err := s.repo.FindByID(ctx, companyID, campaignID)
	if err != nil {
		s.logger.Warn("failed to reload campaign for finalize", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}
	if campaign.Status != models.CampaignSending {
		return
	}

	status := models.CampaignCompleted
	if counts.Sent == 0 && counts.Failed > 0 {
		status = models.CampaignFailed
	}
	if err := s.repo.MarkFinished(ctx, companyID, campaignID, status, counts.Sent, counts.Failed, time.Now().UTC()); err != nil {
		s.logger.Warn("failed to finalize campaign", zap.String("campaign_id", campaignID), zap.Error(err))
		return
	}
	s.logger.Info("campaign finalized",
		zap.String("campaign_id", campaignID),
		zap.String("status", string(status)),
		zap.Int("sent", counts.Sent),
		zap.Int("failed", counts.Failed))
}

func (s *CampaignService) emitDispatchAudit(ctx context.Context, claims *models.JWTClaims, campaign *models.Campaign) {
	if s.audit == nil {
		return
	}
	newValues, _ := json.Marshal(map[string]interface{}{
		"campaign_id": campaign.ID,
		"total":       campaign.TotalCount,
	})
	log := &models.AuditLog{
		CompanyID:  claims.CompanyID,
		UserID:     &claims.UserID,
		Action:     models.AuditActionCampaignDispatch,
		Resource:   "campaign",
		ResourceID: &campaign.ID,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "campaign-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record campaign audit", zap.Error(err))
	}
}

package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matheuspdias/managerclin-public-sub002/internal/dto"
	"github.com/matheuspdias/managerclin-public-sub002/internal/models"
	appErrors "github.com/matheuspdias/managerclin-public-sub002/pkg/errors"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/jobs"
	"github.com/matheuspdias/managerclin-public-sub002/pkg/lock"
)

type campaignRepoStub struct {
	campaign       *models.Campaign
	findErr        error
	recipients     []models.CampaignRecipient
	recipient      *models.CampaignRecipient
	counts         *models.RecipientCounts
	created        []models.CampaignRecipient
	statusUpdates  []models.RecipientStatus
	startedTotal   int
	finishedStatus models.CampaignStatus
	finishedSent   int
	finishedFailed int
	finishCalls    int
}

func (s *campaignRepoStub) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	if s.campaign == nil {
		return nil, 0, nil
	}
	return []models.Campaign{*s.campaign}, 1, nil
}

func (s *campaignRepoStub) FindByID(ctx context.Context, companyID, id string) (*models.Campaign, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	if s.campaign == nil {
		return nil, sql.ErrNoRows
	}
	return s.campaign, nil
}

func (s *campaignRepoStub) Create(ctx context.Context, campaign *models.Campaign) error {
	campaign.ID = "camp-1"
	s.campaign = campaign
	return nil
}

func (s *campaignRepoStub) MarkStarted(ctx context.Context, companyID, id string, total int, startedAt time.Time) error {
	s.startedTotal = total
	s.campaign.Status = models.CampaignSending
	return nil
}

func (s *campaignRepoStub) MarkFinished(ctx context.Context, companyID, id string, status models.CampaignStatus, sent, failed int, finishedAt time.Time) error {
	s.finishCalls++
	s.finishedStatus = status
	s.finishedSent = sent
	s.finishedFailed = failed
	return nil
}

func (s *campaignRepoStub) CreateRecipients(ctx context.Context, recipients []models.CampaignRecipient) error {
	s.created = recipients
	return nil
}

func (s *campaignRepoStub) FindRecipient(ctx context.Context, id string) (*models.CampaignRecipient, error) {
	if s.recipient == nil {
		return nil, sql.ErrNoRows
	}
	return s.recipient, nil
}

func (s *campaignRepoStub) ListRecipients(ctx context.Context, campaignID string) ([]models.CampaignRecipient, error) {
	return s.recipients, nil
}

func (s *campaignRepoStub) UpdateRecipientStatus(ctx context.Context, id string, status models.RecipientStatus, sendErr *string, sentAt *time.Time) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

func (s *campaignRepoStub) RecipientCounts(ctx context.Context, campaignID string) (*models.RecipientCounts, error) {
	return s.counts, nil
}

type audienceStub struct {
	customers []models.Customer
}

func (s audienceStub) ListForAudience(ctx context.Context, companyID string, birthMonth int, withUpcoming bool) ([]models.Customer, error) {
	return s.customers, nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (s *queueStub) Enqueue(job jobs.Job) error {
	if s.err != nil {
		return s.err
	}
	s.jobs = append(s.jobs, job)
	return nil
}

type senderStub struct {
	sent []string
	err  error
}

func (s *senderStub) SendText(ctx context.Context, phone, message string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, phone)
	return nil
}

type flakySenderStub struct {
	failures int
	calls    int
	sent     []string
}

func (s *flakySenderStub) SendText(ctx context.Context, phone, message string) error {
	s.calls++
	if s.calls <= s.failures {
		return assert.AnError
	}
	s.sent = append(s.sent, phone)
	return nil
}

type lockerStub struct {
	ok       bool
	acquired int
}

func (s *lockerStub) TryAcquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lock, bool, error) {
	s.acquired++
	if !s.ok {
		return nil, false, nil
	}
	return &lock.Lock{}, true, nil
}

func campaignClaims() *models.JWTClaims {
	return &models.JWTClaims{UserID: "user-1", CompanyID: "company-1", Role: models.RoleAdmin}
}

func TestCampaignCreateSnapshotsAudienceWithNormalizedPhones(t *testing.T) {
	repo := &campaignRepoStub{}
	audience := audienceStub{customers: []models.Customer{
		{ID: "cust-1", Phone: "(11) 98765-4321"},
		{ID: "cust-2", Phone: "5521912345678"},
	}}
	svc := NewCampaignService(repo, audience, &senderStub{}, &queueStub{}, &lockerStub{}, nil, 0, 0, nil, nil)

	campaign, err := svc.Create(context.Background(), campaignClaims(), dto.CreateCampaignRequest{
		Name:    "Aniversariantes",
		Message: "Feliz aniversário!",
	})
	require.NoError(t, err)

	assert.Equal(t, models.CampaignDraft, campaign.Status)
	assert.Equal(t, 2, campaign.TotalCount)
	require.Len(t, repo.created, 2)
	assert.Equal(t, "5511987654321", repo.created[0].Phone)
	assert.Equal(t, "5521912345678", repo.created[1].Phone)
	assert.Equal(t, models.RecipientPending, repo.created[0].Status)
}

func TestCampaignCreateRejectsEmptyAudience(t *testing.T) {
	svc := NewCampaignService(&campaignRepoStub{}, audienceStub{}, &senderStub{}, &queueStub{}, &lockerStub{}, nil, 0, 0, nil, nil)

	_, err := svc.Create(context.Background(), campaignClaims(), dto.CreateCampaignRequest{
		Name:    "Vazia",
		Message: "oi",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestCampaignDispatchQueuesOneJobPerPendingRecipient(t *testing.T) {
	repo := &campaignRepoStub{
		campaign: &models.Campaign{ID: "camp-1", CompanyID: "company-1", Status: models.CampaignDraft},
		recipients: []models.CampaignRecipient{
			{ID: "rec-1", Status: models.RecipientPending},
			{ID: "rec-2", Status: models.RecipientSent},
			{ID: "rec-3", Status: models.RecipientPending},
		},
	}
	queue := &queueStub{}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{}, queue, &lockerStub{}, nil, 0, 0, nil, nil)

	campaign, err := svc.Dispatch(context.Background(), campaignClaims(), "camp-1")
	require.NoError(t, err)

	assert.Equal(t, models.CampaignSending, campaign.Status)
	assert.Equal(t, 3, repo.startedTotal)
	require.Len(t, queue.jobs, 2)
	payload, ok := queue.jobs[0].Payload.(campaignJobPayload)
	require.True(t, ok)
	assert.Equal(t, "camp-1", payload.CampaignID)
	assert.Equal(t, "rec-1", payload.RecipientID)
}

func TestCampaignDispatchRejectsNonDraft(t *testing.T) {
	repo := &campaignRepoStub{
		campaign: &models.Campaign{ID: "camp-1", CompanyID: "company-1", Status: models.CampaignSending},
	}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{}, &queueStub{}, &lockerStub{}, nil, 0, 0, nil, nil)

	_, err := svc.Dispatch(context.Background(), campaignClaims(), "camp-1")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestCampaignProcessJobSendsAndFinalizes(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Message: "oi", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", CampaignID: "camp-1", Phone: "5511987654321", Status: models.RecipientPending},
		counts:    &models.RecipientCounts{Total: 1, Pending: 0, Sent: 1},
	}
	sender := &senderStub{}
	locker := &lockerStub{ok: true}
	svc := NewCampaignService(repo, audienceStub{}, sender, &queueStub{}, locker, nil, 0, 0, nil, nil)

	err := svc.ProcessJob(context.Background(), jobs.Job{
		Type:    campaignJobType,
		Payload: campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"5511987654321"}, sender.sent)
	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, models.RecipientSent, repo.statusUpdates[0])
	assert.Equal(t, 1, repo.finishCalls)
	assert.Equal(t, models.CampaignCompleted, repo.finishedStatus)
	assert.Equal(t, 1, repo.finishedSent)
}

func TestCampaignProcessJobRetriableFailureLeavesRecipientPending(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Message: "oi", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", CampaignID: "camp-1", Phone: "5511987654321", Status: models.RecipientPending},
		counts:    &models.RecipientCounts{Total: 1, Pending: 1},
	}
	locker := &lockerStub{ok: true}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{err: assert.AnError}, &queueStub{}, locker, nil, 0, 0, nil, nil)

	err := svc.ProcessJob(context.Background(), jobs.Job{
		Type:    campaignJobType,
		Payload: campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	})
	require.Error(t, err)

	// the queue will retry; the recipient stays PENDING and nothing finalizes
	assert.Empty(t, repo.statusUpdates)
	assert.Equal(t, 0, locker.acquired)
	assert.Equal(t, 0, repo.finishCalls)
}

func TestCampaignProcessJobTerminalFailureMarksRecipientFailed(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Message: "oi", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", CampaignID: "camp-1", Phone: "5511987654321", Status: models.RecipientPending},
		counts:    &models.RecipientCounts{Total: 2, Pending: 1, Failed: 1},
	}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{err: assert.AnError}, &queueStub{}, &lockerStub{ok: true}, nil, 0, 0, nil, nil)

	err := svc.ProcessJob(context.Background(), jobs.Job{
		Type:         campaignJobType,
		Attempt:      3,
		FinalAttempt: true,
		Payload:      campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	})
	require.Error(t, err)

	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, models.RecipientFailed, repo.statusUpdates[0])
	// one recipient still pending, no finalization yet
	assert.Equal(t, 0, repo.finishCalls)
}

func TestCampaignRecipientRetryDeliversAfterTransientFailure(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Message: "oi", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", CampaignID: "camp-1", Phone: "5511987654321", Status: models.RecipientPending},
		counts:    &models.RecipientCounts{Total: 1, Pending: 0, Sent: 1},
	}
	sender := &flakySenderStub{failures: 1}
	svc := NewCampaignService(repo, audienceStub{}, sender, &queueStub{}, &lockerStub{ok: true}, nil, 0, 0, nil, nil)

	job := jobs.Job{
		Type:    campaignJobType,
		Payload: campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	}
	require.Error(t, svc.ProcessJob(context.Background(), job))
	// the transient failure must not close the campaign over the recipient
	assert.Empty(t, repo.statusUpdates)
	assert.Equal(t, 0, repo.finishCalls)

	job.Attempt = 1
	require.NoError(t, svc.ProcessJob(context.Background(), job))

	require.Len(t, repo.statusUpdates, 1)
	assert.Equal(t, models.RecipientSent, repo.statusUpdates[0])
	assert.Equal(t, 1, repo.finishCalls)
	assert.Equal(t, models.CampaignCompleted, repo.finishedStatus)
	assert.Equal(t, 1, repo.finishedSent)
}

func TestCampaignDispatchMarksUnqueueableRecipientsFailed(t *testing.T) {
	repo := &campaignRepoStub{
		campaign: &models.Campaign{ID: "camp-1", CompanyID: "company-1", Status: models.CampaignDraft},
		recipients: []models.CampaignRecipient{
			{ID: "rec-1", Status: models.RecipientPending},
			{ID: "rec-2", Status: models.RecipientPending},
		},
		counts: &models.RecipientCounts{Total: 2, Pending: 0, Failed: 2},
	}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{}, &queueStub{err: assert.AnError}, &lockerStub{ok: true}, nil, 0, 0, nil, nil)

	_, err := svc.Dispatch(context.Background(), campaignClaims(), "camp-1")
	require.NoError(t, err)

	require.Len(t, repo.statusUpdates, 2)
	assert.Equal(t, models.RecipientFailed, repo.statusUpdates[0])
	assert.Equal(t, models.RecipientFailed, repo.statusUpdates[1])
	// no job will ever run, so dispatch itself settles the campaign
	assert.Equal(t, 1, repo.finishCalls)
	assert.Equal(t, models.CampaignFailed, repo.finishedStatus)
}

func TestCampaignProcessJobSkipsAlreadySentRecipient(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", Status: models.RecipientSent},
	}
	sender := &senderStub{}
	svc := NewCampaignService(repo, audienceStub{}, sender, &queueStub{}, &lockerStub{}, nil, 0, 0, nil, nil)

	err := svc.ProcessJob(context.Background(), jobs.Job{
		Type:    campaignJobType,
		Payload: campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	})
	require.NoError(t, err)
	assert.Empty(t, sender.sent)
}

func TestCampaignFinalizeSkippedWhenLockHeldElsewhere(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Message: "oi", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", CampaignID: "camp-1", Phone: "5511987654321", Status: models.RecipientPending},
		counts:    &models.RecipientCounts{Total: 1, Pending: 0, Sent: 1},
	}
	locker := &lockerStub{ok: false}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{}, &queueStub{}, locker, nil, 0, 0, nil, nil)

	err := svc.ProcessJob(context.Background(), jobs.Job{
		Type:    campaignJobType,
		Payload: campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, locker.acquired)
	assert.Equal(t, 0, repo.finishCalls)
}

func TestCampaignFinalizeMarksFailedWhenNothingWasDelivered(t *testing.T) {
	repo := &campaignRepoStub{
		campaign:  &models.Campaign{ID: "camp-1", CompanyID: "company-1", Message: "oi", Status: models.CampaignSending},
		recipient: &models.CampaignRecipient{ID: "rec-1", CampaignID: "camp-1", Phone: "5511987654321", Status: models.RecipientPending},
		counts:    &models.RecipientCounts{Total: 1, Pending: 0, Failed: 1},
	}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{err: assert.AnError}, &queueStub{}, &lockerStub{ok: true}, nil, 0, 0, nil, nil)

	err := svc.ProcessJob(context.Background(), jobs.Job{
		Type:         campaignJobType,
		Attempt:      3,
		FinalAttempt: true,
		Payload:      campaignJobPayload{CompanyID: "company-1", CampaignID: "camp-1", RecipientID: "rec-1"},
	})
	require.Error(t, err)

	assert.Equal(t, 1, repo.finishCalls)
	assert.Equal(t, models.CampaignFailed, repo.finishedStatus)
}

func TestCampaignProgress(t *testing.T) {
	repo := &campaignRepoStub{
		campaign: &models.Campaign{ID: "camp-1", CompanyID: "company-1", Status: models.CampaignSending},
		counts:   &models.RecipientCounts{Total: 10, Pending: 4, Sent: 5, Failed: 1},
	}
	svc := NewCampaignService(repo, audienceStub{}, &senderStub{}, &queueStub{}, &lockerStub{}, nil, 0, 0, nil, nil)

	progress, err := svc.Progress(context.Background(), "company-1", "camp-1")
	require.NoError(t, err)

	assert.Equal(t, "SENDING", progress.Status)
	assert.Equal(t, 10, progress.Total)
	assert.Equal(t, 5, progress.Sent)
	assert.Equal(t, 1, progress.Failed)
	assert.Equal(t, 4, progress.Pending)
}

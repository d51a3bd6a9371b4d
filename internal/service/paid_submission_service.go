package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
	"eseva-portal/pkg/logger"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Completion claims outlive any realistic callback retry burst.
const completionClaimTTL = 10 * time.Minute

const alertPostPaymentRecordCreation = "post_payment_record_creation_failed"

// Frontend messages for the payment-status page.
const (
	msgInvalidHash         = "Invalid_Transaction_Hash"
	msgTransactionNotFound = "Transaction_Not_Found"
	msgCreationFailed      = "Service_Creation_Failed_Please_Contact_Support"
)

// PayUSettings holds the hosted checkout account.
type PayUSettings struct {
	MerchantKey string
	ActionURL   string
}

// PaidSubmissionServiceImpl implements ports.PaidSubmissionService for
// services paid directly at the hosted checkout (ITR filing).
type PaidSubmissionServiceImpl struct {
	accountRepo ports.AccountRepository
	serviceRepo ports.ServiceRepository
	eventRepo   ports.GatewayEventRepository
	transactor  ports.DBTransactor
	staging     ports.StagingArea
	staged      ports.StagedUploadStore
	claims      ports.CompletionClaimStore
	documents   ports.DocumentStore
	signer      ports.PayUSigner
	payu        PayUSettings
	backendURL  string
	frontendURL string
	stagingTTL  time.Duration
	serviceType domain.ServiceType
	log         zerolog.Logger
}

// PaidSubmissionDeps groups the collaborators of PaidSubmissionServiceImpl.
type PaidSubmissionDeps struct {
	AccountRepo ports.AccountRepository
	ServiceRepo ports.ServiceRepository
	EventRepo   ports.GatewayEventRepository
	Transactor  ports.DBTransactor
	Staging     ports.StagingArea
	Staged      ports.StagedUploadStore
	Claims      ports.CompletionClaimStore
	Documents   ports.DocumentStore
	Signer      ports.PayUSigner
}

// NewPaidSubmissionService creates the ITR paid-submission flow.
func NewPaidSubmissionService(
	deps PaidSubmissionDeps,
	payu PayUSettings,
	backendURL, frontendURL string,
	stagingTTL time.Duration,
	log zerolog.Logger,
) *PaidSubmissionServiceImpl {
	return &PaidSubmissionServiceImpl{
		accountRepo: deps.AccountRepo,
		serviceRepo: deps.ServiceRepo,
		eventRepo:   deps.EventRepo,
		transactor:  deps.Transactor,
		staging:     deps.Staging,
		staged:      deps.Staged,
		claims:      deps.Claims,
		documents:   deps.Documents,
		signer:      deps.Signer,
		payu:        payu,
		backendURL:  backendURL,
		frontendURL: frontendURL,
		stagingTTL:  stagingTTL,
		serviceType: domain.ServiceITR,
		log:         log,
	}
}

// Begin stages the submission's files and returns the signed checkout form.
// Nothing is persisted in the database until the payment callback arrives.
func (s *PaidSubmissionServiceImpl) Begin(ctx context.Context, req ports.BeginSubmissionRequest) (*ports.PayURequest, error) {
	def, _ := domain.LookupService(s.serviceType)

	uploaded := make(map[string]ports.UploadedFile, len(req.Files))
	present := make(map[string]bool, len(req.Files))
	for _, f := range req.Files {
		uploaded[f.Field] = f
		present[f.Field] = true
	}
	if missing := def.MissingInputs(req.Fields, present); len(missing) > 0 {
		return nil, apperror.ErrMissingInput(missing)
	}

	account, err := s.accountRepo.GetByID(ctx, req.AccountID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get account: %w", err))
	}
	if account == nil {
		return nil, apperror.ErrNotFound("Account")
	}

	orderID := uuid.NewString()

	paths := make(map[string]string, len(def.RequiredFiles))
	for _, field := range def.RequiredFiles {
		p, err := s.stageFile(orderID, uploaded[field])
		if err != nil {
			s.discard(orderID)
			return nil, apperror.InternalError(fmt.Errorf("stage %s: %w", field, err))
		}
		paths[field] = p
	}

	fields := make(map[string]string, len(def.RequiredFields))
	for _, f := range def.RequiredFields {
		fields[f] = strings.TrimSpace(req.Fields[f])
	}

	phone := account.Phone
	if phone == "" {
		phone = domain.DefaultCustomerPhone
	}
	now := time.Now().UTC()
	upload := &domain.StagedUpload{
		OrderID:     orderID,
		AccountID:   account.ID,
		ServiceType: s.serviceType,
		Amount:      def.DefaultPrice,
		Fields:      fields,
		Files:       paths,
		Customer:    domain.Customer{Name: account.Name, Email: account.Email, Phone: phone},
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.stagingTTL),
	}
	if err := s.staged.Save(ctx, upload, s.stagingTTL); err != nil {
		s.discard(orderID)
		return nil, apperror.InternalError(fmt.Errorf("save staged upload: %w", err))
	}

	callback := s.backendURL + "/api/payment/itr-callback"
	form := &ports.PayURequest{
		ActionURL:   s.payu.ActionURL,
		Key:         s.payu.MerchantKey,
		TxnID:       orderID,
		Amount:      domain.FormatRupees(upload.Amount),
		ProductInfo: def.Label,
		FirstName:   upload.Customer.Name,
		Email:       upload.Customer.Email,
		Phone:       upload.Customer.Phone,
		SURL:        callback,
		FURL:        callback,
	}
	form.Hash = s.signer.SignRequest(*form)

	s.log.Info().
		Str("order_id", orderID).
		Str("account_id", account.ID.String()).
		Int64("amount", upload.Amount).
		Msg("paid submission staged")

	return form, nil
}

// Complete resolves a checkout callback. It never returns an error: every
// path ends in a redirect to the frontend payment-status page.
func (s *PaidSubmissionServiceImpl) Complete(ctx context.Context, resp ports.PayUResponse, remoteIP string) *ports.SubmissionOutcome {
	event := &domain.GatewayEvent{
		Source:           domain.EventSourcePayUCallback,
		OrderID:          resp.TxnID,
		GatewayStatus:    resp.Status,
		PaymentReference: optionalString(resp.MihPayID),
		Payload: encodePayload(map[string]string{
			"status":      resp.Status,
			"txnid":       resp.TxnID,
			"amount":      resp.Amount,
			"productinfo": resp.ProductInfo,
			"mihpayid":    resp.MihPayID,
		}),
	}

	if !s.signer.VerifyResponse(resp) {
		s.log.Warn().Str("order_id", resp.TxnID).Str("remote_ip", remoteIP).Msg("payu callback hash mismatch")
		s.recordEvent(ctx, event, domain.EventOutcomeRejected)
		return s.failed(apperror.ErrInvalidSignature(), msgInvalidHash, "")
	}

	upload, err := s.staged.Get(ctx, resp.TxnID)
	if err != nil {
		s.log.Error().Err(err).Str("order_id", resp.TxnID).Msg("staged upload lookup failed")
	}
	if upload == nil {
		s.recordEvent(ctx, event, domain.EventOutcomeNotFound)
		return s.failed(apperror.ErrStagedUploadMissing(), msgTransactionNotFound, "")
	}

	if resp.Status != ports.SubmissionSuccess {
		s.cleanup(ctx, upload.OrderID)
		s.recordEvent(ctx, event, domain.EventOutcomeSettled)
		return s.outcome(ports.SubmissionFailure, "", upload.OrderID)
	}

	claimed, err := s.claims.Claim(ctx, upload.OrderID, completionClaimTTL)
	if err != nil {
		s.alert(err, upload, "completion claim failed")
		s.recordEvent(ctx, event, domain.EventOutcomeError)
		return s.failed(apperror.ErrPostPaymentRecordCreation(err), msgCreationFailed, upload.OrderID)
	}
	if !claimed {
		s.recordEvent(ctx, event, domain.EventOutcomeDuplicate)
		return s.outcome(ports.SubmissionSuccess, "", upload.OrderID)
	}

	if paid, err := domain.ParseRupees(resp.Amount); err != nil || paid != upload.Amount {
		s.log.Warn().
			Str("order_id", upload.OrderID).
			Str("remote_ip", remoteIP).
			Str("paid", resp.Amount).
			Int64("expected", upload.Amount).
			Msg("payu callback amount mismatch")
		if rerr := s.claims.Release(ctx, upload.OrderID); rerr != nil {
			s.log.Warn().Err(rerr).Str("order_id", upload.OrderID).Msg("failed to release completion claim")
		}
		s.recordEvent(ctx, event, domain.EventOutcomeRejected)
		return s.failed(apperror.ErrInvalidSignature(), msgInvalidHash, "")
	}

	app, err := s.createRecords(ctx, upload)
	if err != nil {
		s.alert(err, upload, "paid submission could not be recorded")
		s.recordEvent(ctx, event, domain.EventOutcomeError)
		return s.failed(apperror.ErrPostPaymentRecordCreation(err), msgCreationFailed, upload.OrderID)
	}

	s.cleanup(ctx, upload.OrderID)
	s.recordEvent(ctx, event, domain.EventOutcomeSettled)

	s.log.Info().
		Str("order_id", upload.OrderID).
		Str("service_id", app.Service.ID.String()).
		Msg("paid submission completed")

	out := s.outcome(ports.SubmissionSuccess, "", upload.OrderID)
	out.Application = app
	return out
}

// createRecords promotes the staged files and writes the variant and its
// wrapper in one transaction.
func (s *PaidSubmissionServiceImpl) createRecords(ctx context.Context, upload *domain.StagedUpload) (*domain.Application, error) {
	def, _ := domain.LookupService(upload.ServiceType)

	public := make(map[string]string, len(upload.Files))
	for field, tmp := range upload.Files {
		p, err := s.documents.Promote(ctx, tmp, def.StorageDir)
		if err != nil {
			return nil, fmt.Errorf("promote %s: %w", field, err)
		}
		public[field] = p
	}

	variant := def.FromForm(upload.Fields, public)
	if variant == nil {
		return nil, fmt.Errorf("service %s has no form variant", upload.ServiceType)
	}
	if err := variant.Validate(); err != nil {
		return nil, fmt.Errorf("validate variant: %w", err)
	}

	app := domain.NewApplication(upload.AccountID, variant, upload.Amount, domain.ServiceStatusInProgress, time.Now().UTC())

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.serviceRepo.CreateApplication(ctx, dbTx, app); err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return app, nil
}

func (s *PaidSubmissionServiceImpl) stageFile(orderID string, f ports.UploadedFile) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.staging.Stage(orderID, f.Field, f.Filename, rc)
}

func (s *PaidSubmissionServiceImpl) cleanup(ctx context.Context, orderID string) {
	s.discard(orderID)
	if err := s.staged.Delete(ctx, orderID); err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("failed to delete staged upload")
	}
}

func (s *PaidSubmissionServiceImpl) discard(orderID string) {
	if err := s.staging.Discard(orderID); err != nil {
		s.log.Warn().Err(err).Str("order_id", orderID).Msg("failed to discard staging dir")
	}
}

func (s *PaidSubmissionServiceImpl) alert(err error, upload *domain.StagedUpload, msg string) {
	logger.Alert(s.log, alertPostPaymentRecordCreation).
		Err(apperror.ErrPostPaymentRecordCreation(err)).
		Str("order_id", upload.OrderID).
		Str("account_id", upload.AccountID.String()).
		Int64("amount", upload.Amount).
		Msg(msg)
}

func (s *PaidSubmissionServiceImpl) recordEvent(ctx context.Context, event *domain.GatewayEvent, outcome domain.GatewayEventOutcome) {
	event.ID = uuid.New()
	event.Outcome = outcome
	event.CreatedAt = time.Now().UTC()
	if err := s.eventRepo.Create(ctx, event); err != nil {
		s.log.Error().Err(err).Str("order_id", event.OrderID).Str("outcome", string(outcome)).Msg("failed to record gateway event")
	}
}

func (s *PaidSubmissionServiceImpl) failed(err *apperror.AppError, message, txnID string) *ports.SubmissionOutcome {
	out := s.outcome(ports.SubmissionError, message, txnID)
	out.Err = err
	return out
}

// outcome builds the redirect to {frontend}/payment-status.
func (s *PaidSubmissionServiceImpl) outcome(status, message, txnID string) *ports.SubmissionOutcome {
	q := "status=" + url.QueryEscape(status)
	if message != "" {
		q += "&message=" + url.QueryEscape(message)
	}
	if txnID != "" {
		q += "&txnid=" + url.QueryEscape(txnID)
	}
	return &ports.SubmissionOutcome{
		Status:      status,
		Message:     message,
		TxnID:       txnID,
		RedirectURL: s.frontendURL + "/payment-status?" + q,
	}
}

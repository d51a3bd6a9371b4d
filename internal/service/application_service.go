package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const maxBulkItems = 100

// ApplicationServiceImpl implements ports.ApplicationService.
type ApplicationServiceImpl struct {
	serviceRepo ports.ServiceRepository
	ledger      ports.LedgerService
	pricing     ports.PricingService
	documents   ports.DocumentStore
	transactor  ports.DBTransactor
	log         zerolog.Logger
}

// NewApplicationService creates the wallet-debited application service.
func NewApplicationService(
	serviceRepo ports.ServiceRepository,
	ledger ports.LedgerService,
	pricing ports.PricingService,
	documents ports.DocumentStore,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ApplicationServiceImpl {
	return &ApplicationServiceImpl{
		serviceRepo: serviceRepo,
		ledger:      ledger,
		pricing:     pricing,
		documents:   documents,
		transactor:  transactor,
		log:         log,
	}
}

// ApplyWithDocuments stores the uploaded files, then creates the application
// and debits the wallet in one transaction. Stored files are removed again
// when the transaction does not commit.
func (s *ApplicationServiceImpl) ApplyWithDocuments(ctx context.Context, req ports.DocumentApplicationRequest) (*ports.ApplicationReceipt, error) {
	def, ok := domain.LookupService(req.ServiceType)
	if !ok || def.PaidDirect || len(def.RequiredFiles) == 0 {
		return nil, apperror.Validation(fmt.Sprintf("service %q does not accept document applications", req.ServiceType))
	}

	cfg, err := s.activeConfig(ctx, req.ServiceType)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(req.Files))
	uploaded := make(map[string]ports.UploadedFile, len(req.Files))
	for _, f := range req.Files {
		present[f.Field] = true
		uploaded[f.Field] = f
	}
	if missing := def.MissingInputs(req.Fields, present); len(missing) > 0 {
		return nil, apperror.ErrMissingInput(missing)
	}

	submission := uuid.NewString()
	paths := make(map[string]string, len(def.RequiredFiles))
	for _, field := range def.RequiredFiles {
		p, err := s.storeDocument(ctx, def.StorageDir, submission, uploaded[field])
		if err != nil {
			s.removeDocuments(ctx, paths)
			return nil, apperror.InternalError(fmt.Errorf("store %s: %w", field, err))
		}
		paths[field] = p
	}

	variant := def.FromForm(req.Fields, paths)
	if err := variant.Validate(); err != nil {
		s.removeDocuments(ctx, paths)
		return nil, validationError(err)
	}

	app := domain.NewApplication(req.AccountID, variant, cfg.Price, domain.ServiceStatusPending, time.Now().UTC())
	debit := ports.DebitRequest{
		AccountID:   req.AccountID,
		Amount:      cfg.Price,
		Category:    domain.CategoryServicePayment,
		Description: applicationDescription(def, req.Fields),
		ServiceID:   &app.Service.ID,
	}

	receipt, err := s.createAndDebit(ctx, []*domain.Application{app}, debit)
	if err != nil {
		s.removeDocuments(ctx, paths)
		return nil, err
	}

	s.log.Info().
		Str("account_id", req.AccountID.String()).
		Str("service_type", string(req.ServiceType)).
		Str("service_id", app.Service.ID.String()).
		Int64("amount", cfg.Price).
		Msg("application submitted")

	return receipt, nil
}

// ApplyBulk validates every item, then creates all of them and takes a
// single debit of price × count in one transaction.
func (s *ApplicationServiceImpl) ApplyBulk(ctx context.Context, accountID uuid.UUID, serviceType domain.ServiceType, items []json.RawMessage) (*ports.ApplicationReceipt, error) {
	def, ok := domain.LookupService(serviceType)
	if !ok || def.PaidDirect || len(def.RequiredFiles) > 0 {
		return nil, apperror.Validation(fmt.Sprintf("service %q does not accept bulk applications", serviceType))
	}
	if len(items) == 0 || len(items) > maxBulkItems {
		return nil, apperror.Validation(fmt.Sprintf("applications must contain between 1 and %d items", maxBulkItems))
	}

	cfg, err := s.activeConfig(ctx, serviceType)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	apps := make([]*domain.Application, 0, len(items))
	for i, raw := range items {
		v, err := domain.DecodeVariant(serviceType, raw)
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("application %d: malformed payload", i+1))
		}
		if err := v.Validate(); err != nil {
			return nil, apperror.Validation(fmt.Sprintf("application %d: %v", i+1, err))
		}
		apps = append(apps, domain.NewApplication(accountID, v, cfg.Price, domain.ServiceStatusPending, now))
	}

	debit := ports.DebitRequest{
		AccountID:   accountID,
		Amount:      cfg.Price * int64(len(apps)),
		Category:    domain.CategoryServicePayment,
		Description: bulkDescription(serviceType, len(apps)),
	}
	receipt, err := s.createAndDebit(ctx, apps, debit)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account_id", accountID.String()).
		Str("service_type", string(serviceType)).
		Int("count", len(apps)).
		Int64("amount", debit.Amount).
		Msg("bulk application submitted")

	return receipt, nil
}

func (s *ApplicationServiceImpl) createAndDebit(ctx context.Context, apps []*domain.Application, debit ports.DebitRequest) (*ports.ApplicationReceipt, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	for _, app := range apps {
		if err := s.serviceRepo.CreateApplication(ctx, dbTx, app); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("create application: %w", err))
		}
	}

	entry, balance, err := s.ledger.DebitWithinTx(ctx, dbTx, debit)
	if err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	return &ports.ApplicationReceipt{
		Applications:     apps,
		Count:            len(apps),
		Deducted:         debit.Amount,
		RemainingBalance: balance,
		Entry:            entry,
	}, nil
}

// ListForAccount returns the caller's service wrappers, newest first.
func (s *ApplicationServiceImpl) ListForAccount(ctx context.Context, accountID uuid.UUID, limit int) ([]domain.Service, error) {
	services, err := s.serviceRepo.ListByAccount(ctx, accountID, clampLimit(limit))
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return services, nil
}

// UpdateStatus changes the workflow status of a wrapper.
func (s *ApplicationServiceImpl) UpdateStatus(ctx context.Context, serviceID uuid.UUID, status domain.ServiceStatus) (*domain.Service, error) {
	if !status.Valid() {
		return nil, apperror.Validation(fmt.Sprintf("invalid status %q", status))
	}

	app, err := s.mutate(ctx, serviceID, func(app *domain.Application, now time.Time) error {
		app.Service.Status = status
		app.Service.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app.Service, nil
}

// AddComment appends an admin comment to a wrapper.
func (s *ApplicationServiceImpl) AddComment(ctx context.Context, serviceID uuid.UUID, text string) (*domain.Service, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperror.ErrMissingInput([]string{"text"})
	}

	app, err := s.mutate(ctx, serviceID, func(app *domain.Application, now time.Time) error {
		app.Service.Comments = append(app.Service.Comments, domain.Comment{Text: text, CreatedAt: now})
		app.Service.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return app.Service, nil
}

// AdminAction approves, rejects or remarks on an RTPS or labour-card
// application. The variant and its wrapper change together.
func (s *ApplicationServiceImpl) AdminAction(ctx context.Context, req ports.AdminActionRequest) (*domain.Application, error) {
	if req.ServiceType != domain.ServiceRtps && req.ServiceType != domain.ServiceLabourCard {
		return nil, apperror.Validation(fmt.Sprintf("service %q has no admin actions", req.ServiceType))
	}
	remark := strings.TrimSpace(req.Remark)

	switch req.Action {
	case ports.ActionApprove:
	case ports.ActionReject, ports.ActionGeneralRemark:
		if remark == "" {
			return nil, apperror.ErrMissingInput([]string{"remark"})
		}
	default:
		return nil, apperror.Validation(fmt.Sprintf("invalid action %q", req.Action))
	}

	app, err := s.mutate(ctx, req.ServiceID, func(app *domain.Application, now time.Time) error {
		if app.Service.ServiceType != req.ServiceType {
			return apperror.ErrNotFound("Service")
		}
		switch req.Action {
		case ports.ActionApprove:
			setStatus(app, domain.ServiceStatusApproved, now)
			if remark != "" {
				app.Variant.StatusRemark = &remark
			}
		case ports.ActionReject:
			setStatus(app, domain.ServiceStatusRejected, now)
			app.Variant.StatusRemark = &remark
		case ports.ActionGeneralRemark:
			app.Variant.GeneralRemarks = append(app.Variant.GeneralRemarks, domain.Remark{
				Text: remark, AdminID: req.AdminID, CreatedAt: now,
			})
			app.Variant.UpdatedAt = now
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("service_id", req.ServiceID.String()).
		Str("action", req.Action).
		Str("admin_id", req.AdminID.String()).
		Msg("admin action applied")

	return app, nil
}

// AttachDocument stores an admin upload and appends it to the service's
// document list. The file is removed again if the service cannot be updated.
func (s *ApplicationServiceImpl) AttachDocument(ctx context.Context, req ports.AttachDocumentRequest) (*domain.Document, error) {
	docType := strings.TrimSpace(req.DocumentType)
	if docType == "" {
		docType = domain.DocumentTypeOther
	}
	if !domain.ValidDocumentType(docType) {
		return nil, apperror.Validation(fmt.Sprintf("invalid document type %q", docType))
	}
	if req.File.Open == nil {
		return nil, apperror.ErrMissingInput([]string{"document"})
	}
	if _, err := s.findApplication(ctx, req.ServiceID); err != nil {
		return nil, err
	}

	stored, err := s.storeDocument(ctx, domain.ServiceDocumentsDir, req.ServiceID.String()+"_"+uuid.NewString(), req.File)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("store document: %w", err))
	}

	var doc domain.Document
	_, err = s.mutate(ctx, req.ServiceID, func(app *domain.Application, now time.Time) error {
		doc = domain.Document{
			Filename:     path.Base(stored),
			OriginalName: req.File.Filename,
			Path:         stored,
			UploadedBy:   req.AdminID,
			UploadedAt:   now,
			DocumentType: docType,
		}
		app.Service.Documents = append(app.Service.Documents, doc)
		app.Service.UpdatedAt = now
		return nil
	})
	if err != nil {
		s.removeDocuments(ctx, map[string]string{"document": stored})
		return nil, err
	}

	s.log.Info().
		Str("service_id", req.ServiceID.String()).
		Str("admin_id", req.AdminID.String()).
		Str("path", stored).
		Msg("document attached")
	return &doc, nil
}

// ListDocuments hides services the caller does not own behind not found.
func (s *ApplicationServiceImpl) ListDocuments(ctx context.Context, serviceID, callerID uuid.UUID, isAdmin bool) ([]domain.Document, error) {
	app, err := s.findApplication(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && app.Service.AccountID != callerID {
		return nil, apperror.ErrNotFound("Service")
	}
	if app.Service.Documents == nil {
		return []domain.Document{}, nil
	}
	return app.Service.Documents, nil
}

// FulfillVoterCard stores the finished PDF on a voter-card application and
// marks it completed. A PDF uploaded earlier is replaced.
func (s *ApplicationServiceImpl) FulfillVoterCard(ctx context.Context, serviceID, adminID uuid.UUID, file ports.UploadedFile) (*domain.Application, error) {
	if file.Open == nil {
		return nil, apperror.ErrMissingInput([]string{"document"})
	}
	found, err := s.findApplication(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if found.Service.ServiceType != domain.ServiceVoterCard {
		return nil, apperror.ErrNotFound("Voter service")
	}

	def, _ := domain.LookupService(domain.ServiceVoterCard)
	stored, err := s.storeDocument(ctx, def.StorageDir, serviceID.String()+"_"+uuid.NewString(), file)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("store voter pdf: %w", err))
	}

	var previous string
	app, err := s.mutate(ctx, serviceID, func(app *domain.Application, now time.Time) error {
		voter, ok := app.Variant.Data.(domain.VoterCard)
		if !ok {
			return apperror.ErrNotFound("Voter service")
		}
		previous = voter.PDFPath
		voter.PDFPath = stored
		voter.PDFOriginalName = file.Filename
		app.Variant.Data = voter
		setStatus(app, domain.ServiceStatusCompleted, now)
		return nil
	})
	if err != nil {
		s.removeDocuments(ctx, map[string]string{"document": stored})
		return nil, err
	}
	if previous != "" {
		s.removeDocuments(ctx, map[string]string{"previous": previous})
	}

	s.log.Info().
		Str("service_id", serviceID.String()).
		Str("admin_id", adminID.String()).
		Msg("voter card fulfilled")
	return app, nil
}

func (s *ApplicationServiceImpl) findApplication(ctx context.Context, serviceID uuid.UUID) (*domain.Application, error) {
	app, err := s.serviceRepo.GetApplication(ctx, serviceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get application: %w", err))
	}
	if app == nil {
		return nil, apperror.ErrNotFound("Service")
	}
	return app, nil
}

// mutate locks an application, applies fn and writes both records back.
func (s *ApplicationServiceImpl) mutate(ctx context.Context, serviceID uuid.UUID, fn func(app *domain.Application, now time.Time) error) (*domain.Application, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	app, err := s.lockApplication(ctx, dbTx, serviceID)
	if err != nil {
		return nil, err
	}
	if err := fn(app, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := s.serviceRepo.UpdateApplication(ctx, dbTx, app); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update application: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}
	return app, nil
}

func (s *ApplicationServiceImpl) lockApplication(ctx context.Context, tx pgx.Tx, serviceID uuid.UUID) (*domain.Application, error) {
	app, err := s.serviceRepo.GetApplicationForUpdate(ctx, tx, serviceID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get application: %w", err))
	}
	if app == nil {
		return nil, apperror.ErrNotFound("Service")
	}
	return app, nil
}

func (s *ApplicationServiceImpl) activeConfig(ctx context.Context, serviceType domain.ServiceType) (*domain.ServiceConfig, error) {
	cfg, err := s.pricing.Config(ctx, serviceType)
	if err != nil {
		return nil, err
	}
	if !cfg.IsActive {
		return nil, apperror.ErrServiceDisabled(cfg.MaintenanceMessage)
	}
	return cfg, nil
}

func (s *ApplicationServiceImpl) storeDocument(ctx context.Context, dir, submission string, f ports.UploadedFile) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	return s.documents.Save(ctx, dir, documentName(submission, f.Field, f.Filename), rc)
}

func (s *ApplicationServiceImpl) removeDocuments(ctx context.Context, paths map[string]string) {
	for _, p := range paths {
		if err := s.documents.Remove(ctx, p); err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("failed to remove orphaned document")
		}
	}
}

func setStatus(app *domain.Application, status domain.ServiceStatus, now time.Time) {
	app.Variant.Status = status
	app.Variant.UpdatedAt = now
	app.Service.Status = status
	app.Service.UpdatedAt = now
}

func validationError(err error) error {
	var missing *domain.MissingInputError
	if errors.As(err, &missing) {
		return apperror.ErrMissingInput(missing.Names)
	}
	return apperror.Validation(err.Error())
}

// documentName is {submission}_{field}{ext}. Every submission gets a fresh
// id so applicants never share a stored file.
func documentName(submission, field, filename string) string {
	return submission + "_" + field + strings.ToLower(filepath.Ext(filename))
}

func applicationDescription(def domain.ServiceDefinition, fields map[string]string) string {
	switch def.Type {
	case domain.ServicePanCard:
		return fmt.Sprintf("Applied for Pan Card (Name: %s)", strings.TrimSpace(fields["fullName"]))
	case domain.ServiceJobCard:
		return fmt.Sprintf("Applied for Job Card (Name: %s)", strings.TrimSpace(fields["name"]))
	}
	return "Applied for " + def.Label
}

func bulkDescription(serviceType domain.ServiceType, n int) string {
	var label string
	switch serviceType {
	case domain.ServiceVoterCard:
		label = "Bulk Voter PDF Application"
	case domain.ServiceRtps:
		label = "Bulk RTPS Application"
	case domain.ServiceLabourCard:
		label = "Bulk Labour Card Application"
	default:
		label = "Bulk " + string(serviceType) + " Application"
	}
	return fmt.Sprintf("%s (%d items)", label, n)
}

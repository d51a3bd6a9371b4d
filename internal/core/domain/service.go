package domain

import (
	"time"

	"github.com/google/uuid"
)

// ServiceType is the discriminator of the service catalog.
type ServiceType string

const (
	ServicePanCard    ServiceType = "PanCard"
	ServiceVoterCard  ServiceType = "VoterCard"
	ServiceRtps       ServiceType = "Rtps"
	ServiceLabourCard ServiceType = "LabourCard"
	ServiceITR        ServiceType = "ITR"
	ServiceJobCard    ServiceType = "JobCard"
)

// ServiceStatus is the workflow state of a generic service record.
type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "pending"
	ServiceStatusInProgress ServiceStatus = "in_progress"
	ServiceStatusCompleted  ServiceStatus = "completed"
	ServiceStatusApproved   ServiceStatus = "approved"
	ServiceStatusRejected   ServiceStatus = "rejected"
)

// Valid reports whether s is a known workflow state.
func (s ServiceStatus) Valid() bool {
	switch s {
	case ServiceStatusPending, ServiceStatusInProgress, ServiceStatusCompleted,
		ServiceStatusApproved, ServiceStatusRejected:
		return true
	}
	return false
}

// Comment is an admin note attached to a service.
type Comment struct {
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ServiceDocumentsDir is the storage prefix for files admins attach to a service.
const ServiceDocumentsDir = "service-documents"

const (
	DocumentTypeReceipt    = "receipt"
	DocumentTypeAdditional = "additional_document"
	DocumentTypeProof      = "proof"
	DocumentTypeOther      = "other"
)

// Document is a file attached to a service after submission.
type Document struct {
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"path"`
	UploadedBy   uuid.UUID `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at"`
	DocumentType string    `json:"document_type"`
}

// ValidDocumentType reports whether t is a known document type.
func ValidDocumentType(t string) bool {
	switch t {
	case DocumentTypeReceipt, DocumentTypeAdditional, DocumentTypeProof, DocumentTypeOther:
		return true
	}
	return false
}

// Service is the generic wrapper every application gets, pointing at one
// variant record of the matching type.
type Service struct {
	ID          uuid.UUID     `json:"id"`
	AccountID   uuid.UUID     `json:"account_id"`
	ServiceType ServiceType   `json:"service_type"`
	VariantID   uuid.UUID     `json:"variant_id"`
	Status      ServiceStatus `json:"status"`
	Comments    []Comment     `json:"comments"`
	Documents   []Document    `json:"documents"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Remark is an admin remark on a variant record that does not change its status.
type Remark struct {
	Text      string    `json:"text"`
	AdminID   uuid.UUID `json:"admin_id"`
	CreatedAt time.Time `json:"created_at"`
}

// VariantRecord is the persisted, type-specific half of an application.
type VariantRecord struct {
	ID             uuid.UUID     `json:"id"`
	AccountID      uuid.UUID     `json:"account_id"`
	ServiceType    ServiceType   `json:"service_type"`
	Status         ServiceStatus `json:"status"`
	StatusRemark   *string       `json:"status_remark,omitempty"`
	GeneralRemarks []Remark      `json:"general_remarks"`
	Price          int64         `json:"price"` // Paise charged for this record
	Data           Variant       `json:"data"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// Application pairs a wrapper with its variant, as they are always written together.
type Application struct {
	Service *Service       `json:"service"`
	Variant *VariantRecord `json:"variant"`
}

// NewApplication builds a linked wrapper and variant for accountID.
func NewApplication(accountID uuid.UUID, v Variant, price int64, status ServiceStatus, now time.Time) *Application {
	variant := &VariantRecord{
		ID:             uuid.New(),
		AccountID:      accountID,
		ServiceType:    v.ServiceType(),
		Status:         status,
		GeneralRemarks: []Remark{},
		Price:          price,
		Data:           v,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	return &Application{
		Service: &Service{
			ID:          uuid.New(),
			AccountID:   accountID,
			ServiceType: v.ServiceType(),
			VariantID:   variant.ID,
			Status:      status,
			Comments:    []Comment{},
			Documents:   []Document{},
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		Variant: variant,
	}
}

// ServiceConfig is the admin-managed price and availability of a service type.
type ServiceConfig struct {
	ServiceType        ServiceType `json:"service_type"`
	Price              int64       `json:"price"` // Paise
	Label              string      `json:"label"`
	IsActive           bool        `json:"is_active"`
	MaintenanceMessage string      `json:"maintenance_message"`
	CreatedAt          time.Time   `json:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at"`
}

// DefaultMaintenanceMessage is shown while a service is switched off.
const DefaultMaintenanceMessage = "This service is currently under maintenance."

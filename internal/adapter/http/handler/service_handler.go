package handler

import (
	"eseva-portal/internal/adapter/http/dto"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
	"eseva-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// ServiceHandler handles wallet-debited service applications.
type ServiceHandler struct {
	appSvc ports.ApplicationService
}

// NewServiceHandler creates a new ServiceHandler.
func NewServiceHandler(appSvc ports.ApplicationService) *ServiceHandler {
	return &ServiceHandler{appSvc: appSvc}
}

// ApplyWithDocuments returns the handler for a multipart application of
// serviceType, e.g. POST /api/services/apply/pan-card.
func (h *ServiceHandler) ApplyWithDocuments(serviceType domain.ServiceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := caller(c)
		if !ok {
			return
		}

		fields, files, err := multipartInput(c)
		if err != nil {
			response.Error(c, bindError(err))
			return
		}

		receipt, err := h.appSvc.ApplyWithDocuments(c.Request.Context(), ports.DocumentApplicationRequest{
			AccountID:   claims.AccountID,
			ServiceType: serviceType,
			Fields:      fields,
			Files:       files,
		})
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Created(c, dto.ToReceiptResponse(receipt))
	}
}

// ApplyBulk returns the handler for a JSON batch of serviceType
// applications, e.g. POST /api/services/apply/rtps.
func (h *ServiceHandler) ApplyBulk(serviceType domain.ServiceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := caller(c)
		if !ok {
			return
		}

		var req dto.BulkApplicationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}

		receipt, err := h.appSvc.ApplyBulk(c.Request.Context(), claims.AccountID, serviceType, req.Applications)
		if err != nil {
			response.Error(c, err)
			return
		}

		response.Created(c, dto.ToReceiptResponse(receipt))
	}
}

// MyServices handles GET /api/services/my-services.
func (h *ServiceHandler) MyServices(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}

	services, err := h.appSvc.ListForAccount(c.Request.Context(), claims.AccountID, queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, services)
}

// AttachDocument handles POST /api/services/:serviceId/documents. Admin only.
func (h *ServiceHandler) AttachDocument(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}

	fields, files, err := multipartInput(c)
	if err != nil {
		response.Error(c, bindError(err))
		return
	}
	file, ok := fileField(files, "document")
	if !ok {
		response.Error(c, apperror.ErrMissingInput([]string{"document"}))
		return
	}

	doc, err := h.appSvc.AttachDocument(c.Request.Context(), ports.AttachDocumentRequest{
		ServiceID:    serviceID,
		AdminID:      admin.AccountID,
		DocumentType: fields["documentType"],
		File:         file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, doc)
}

// ListDocuments handles GET /api/services/:serviceId/documents.
func (h *ServiceHandler) ListDocuments(c *gin.Context) {
	claims, ok := caller(c)
	if !ok {
		return
	}
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}

	docs, err := h.appSvc.ListDocuments(c.Request.Context(), serviceID, claims.AccountID, claims.Role == domain.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, docs)
}

// FulfillVoterCard handles POST /api/services/:serviceId/voter-pdf. Admin only.
func (h *ServiceHandler) FulfillVoterCard(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}

	_, files, err := multipartInput(c)
	if err != nil {
		response.Error(c, bindError(err))
		return
	}
	file, ok := fileField(files, "document")
	if !ok {
		response.Error(c, apperror.ErrMissingInput([]string{"document"}))
		return
	}

	app, err := h.appSvc.FulfillVoterCard(c.Request.Context(), serviceID, admin.AccountID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, app)
}

package handler

import (
	"eseva-portal/internal/adapter/http/dto"
	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"
	"eseva-portal/pkg/apperror"
	"eseva-portal/pkg/response"

	"github.com/gin-gonic/gin"
)

// AdminHandler handles the admin console endpoints.
type AdminHandler struct {
	adminSvc     ports.AdminService
	reportingSvc ports.ReportingService
	appSvc       ports.ApplicationService
	pricingSvc   ports.PricingService
	accountSvc   ports.AccountService
}

// AdminDeps groups the services behind the admin console.
type AdminDeps struct {
	AdminSvc     ports.AdminService
	ReportingSvc ports.ReportingService
	AppSvc       ports.ApplicationService
	PricingSvc   ports.PricingService
	AccountSvc   ports.AccountService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(deps AdminDeps) *AdminHandler {
	return &AdminHandler{
		adminSvc:     deps.AdminSvc,
		reportingSvc: deps.ReportingSvc,
		appSvc:       deps.AppSvc,
		pricingSvc:   deps.PricingSvc,
		accountSvc:   deps.AccountSvc,
	}
}

// ManualCredit handles POST /api/admin/users/:userId/credit.
func (h *AdminHandler) ManualCredit(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	var req dto.ManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)
	amount, err := domain.RupeesToPaise(req.Amount)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	entry, balance, err := h.adminSvc.ManualCredit(c.Request.Context(), userID, amount, req.Description)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreditResponse{
		Entry:   dto.ToLedgerEntryResponse(entry),
		Balance: domain.FormatRupees(balance),
	})
}

// SetAccountStatus handles PATCH /api/admin/users/:userId/status.
func (h *AdminHandler) SetAccountStatus(c *gin.Context) {
	userID, ok := uuidParam(c, "userId")
	if !ok {
		return
	}

	var req dto.AccountStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	account, err := h.accountSvc.SetStatus(c.Request.Context(), userID, domain.AccountStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToAccountResponse(account))
}

// ApproveTransaction handles POST /api/admin/transactions/:orderId/approve.
func (h *AdminHandler) ApproveTransaction(c *gin.Context) {
	entry, settled, err := h.adminSvc.ApproveTransaction(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ApproveResponse{
		Entry:            dto.ToLedgerEntryResponse(entry),
		AlreadyProcessed: !settled,
	})
}

// ListTransactions handles GET /api/admin/transactions.
func (h *AdminHandler) ListTransactions(c *gin.Context) {
	entries, err := h.reportingSvc.ListTransactions(c.Request.Context(), queryLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToLedgerEntryResponses(entries))
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.reportingSvc.GetStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToStatsResponse(stats))
}

// UpdateServiceStatus handles PATCH /api/admin/service/:serviceId/status.
func (h *AdminHandler) UpdateServiceStatus(c *gin.Context) {
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}

	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	svc, err := h.appSvc.UpdateStatus(c.Request.Context(), serviceID, domain.ServiceStatus(req.Status))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, svc)
}

// AddComment handles POST /api/admin/service/:serviceId/comment.
func (h *AdminHandler) AddComment(c *gin.Context) {
	serviceID, ok := uuidParam(c, "serviceId")
	if !ok {
		return
	}

	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	svc, err := h.appSvc.AddComment(c.Request.Context(), serviceID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, svc)
}

// ApplicationAction returns the handler for approve/reject/remark decisions
// on serviceType, e.g. POST /api/admin/service/:serviceId/rtps/action.
func (h *AdminHandler) ApplicationAction(serviceType domain.ServiceType) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := caller(c)
		if !ok {
			return
		}
		serviceID, ok := uuidParam(c, "serviceId")
		if !ok {
			return
		}

		var req dto.AdminActionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, bindError(err))
			return
		}
		dto.SanitizeStruct(&req)

		app, err := h.appSvc.AdminAction(c.Request.Context(), ports.AdminActionRequest{
			ServiceID:   serviceID,
			ServiceType: serviceType,
			Action:      req.Action,
			Remark:      req.Remark,
			AdminID:     admin.AccountID,
		})
		if err != nil {
			response.Error(c, err)
			return
		}

		response.OK(c, app)
	}
}

// ListPrices handles GET /api/admin/config/prices.
func (h *AdminHandler) ListPrices(c *gin.Context) {
	configs, err := h.pricingSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.ServiceConfigResponse, 0, len(configs))
	for i := range configs {
		items = append(items, dto.ToServiceConfigResponse(&configs[i]))
	}
	response.OK(c, items)
}

// UpdatePrice handles PUT /api/admin/config/prices.
func (h *AdminHandler) UpdatePrice(c *gin.Context) {
	var req dto.PriceUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	price, err := domain.RupeesToPaise(req.Price)
	if err != nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	cfg, err := h.pricingSvc.UpdatePrice(c.Request.Context(), domain.ServiceType(req.ServiceType), price)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToServiceConfigResponse(cfg))
}

// Toggle handles PATCH /api/admin/config/toggle.
func (h *AdminHandler) Toggle(c *gin.Context) {
	var req dto.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	cfg, err := h.pricingSvc.Toggle(c.Request.Context(), domain.ServiceType(req.ServiceType), *req.IsActive, req.MaintenanceMessage)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.ToServiceConfigResponse(cfg))
}

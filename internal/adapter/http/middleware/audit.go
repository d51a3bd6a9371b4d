package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type auditRoute struct {
	action       domain.AuditAction
	resourceType string
	param        string // Route parameter naming the resource, if any
}

// auditRoutes maps "METHOD route-template" to the audited action.
var auditRoutes = map[string]auditRoute{
	"POST /api/auth/register":                          {domain.AuditActionRegister, "account", ""},
	"POST /api/auth/login":                             {domain.AuditActionLogin, "session", ""},
	"POST /api/wallet/recharge":                        {domain.AuditActionRecharge, "ledger_entry", ""},
	"POST /api/payment/initiate-itr-payment":           {domain.AuditActionPaidSubmission, "staged_upload", ""},
	"POST /api/services/apply/pan-card":                {domain.AuditActionApply, "service", ""},
	"POST /api/services/apply/job-card":                {domain.AuditActionApply, "service", ""},
	"POST /api/services/apply/voter-card":              {domain.AuditActionApply, "service", ""},
	"POST /api/services/apply/rtps":                    {domain.AuditActionApply, "service", ""},
	"POST /api/services/apply/labour-card":             {domain.AuditActionApply, "service", ""},
	"POST /api/admin/users/:userId/credit":             {domain.AuditActionManualCredit, "account", "userId"},
	"PATCH /api/admin/users/:userId/status":            {domain.AuditActionServiceUpdate, "account", "userId"},
	"POST /api/admin/transactions/:orderId/approve":    {domain.AuditActionApproveTxn, "ledger_entry", "orderId"},
	"PATCH /api/admin/service/:serviceId/status":       {domain.AuditActionServiceUpdate, "service", "serviceId"},
	"POST /api/admin/service/:serviceId/comment":       {domain.AuditActionServiceUpdate, "service", "serviceId"},
	"POST /api/admin/service/:serviceId/rtps/action":   {domain.AuditActionServiceUpdate, "service", "serviceId"},
	"POST /api/admin/service/:serviceId/labour/action": {domain.AuditActionServiceUpdate, "service", "serviceId"},
	"PUT /api/admin/config/prices":                     {domain.AuditActionPricingUpdate, "service_config", ""},
	"PATCH /api/admin/config/toggle":                   {domain.AuditActionPricingUpdate, "service_config", ""},
}

// AuditLog creates an audit middleware that logs successful write operations.
// Routes are matched on their registered template, so it must be attached
// with Use on the engine or a group.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			return
		}
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return
		}

		route, ok := auditRoutes[c.Request.Method+" "+c.FullPath()]
		if !ok {
			return
		}

		var accountID *uuid.UUID
		if claims, ok := Claims(c); ok {
			accountID = &claims.AccountID
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"request_id": c.GetString(CtxRequestID),
		})

		entry := &domain.AuditLog{
			ID:           uuid.New(),
			AccountID:    accountID,
			Action:       route.action,
			ResourceType: route.resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now().UTC(),
		}
		if route.param != "" {
			entry.ResourceID = c.Param(route.param)
		}
		auditSvc.Log(c.Request.Context(), entry)
	}
}

package integration

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"eseva-portal/internal/core/domain"
	"eseva-portal/internal/core/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentApplications_NoOverdraft fires more wallet-debited
// applications than the balance covers. The conditional debit must let
// exactly floor(balance/price) through and never drive the balance negative.
func TestConcurrentApplications_NoOverdraft(t *testing.T) {
	app := newTestAppWith(t, testAppOptions{})

	const (
		price       = int64(37000) // RTPS default
		affordable  = 7
		concurrency = 25
		leftover    = int64(100)
	)
	account, token := app.seedAccount(t, domain.RoleUser, price*affordable+leftover)

	var (
		wg           sync.WaitGroup
		successCount atomic.Int64
		rejectCount  atomic.Int64
		otherCount   atomic.Int64
	)
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(i int) {
			defer wg.Done()
			resp := app.postJSON(t, "/api/services/apply/rtps", token, map[string]any{
				"applications": []map[string]string{
					{"district": "Patna", "block": "Phulwari", "referenceNumber": fmt.Sprintf("RTPS-%03d", i)},
				},
			})
			resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				rejectCount.Add(1)
			default:
				otherCount.Add(1)
			}
		}(i)
	}
	wg.Wait()

	t.Logf("Results: %d succeeded, %d rejected, %d other", successCount.Load(), rejectCount.Load(), otherCount.Load())

	assert.Equal(t, int64(affordable), successCount.Load())
	assert.Equal(t, int64(concurrency-affordable), rejectCount.Load())
	assert.Zero(t, otherCount.Load())

	assert.Equal(t, leftover, app.accounts.balance(account.ID))
	assert.Equal(t, affordable, app.services.count(), "rejected debits must not leave applications behind")
	app.assertReconciled(t, account.ID)
}

// TestConcurrentWebhooks_CreditOnce delivers the same success notification
// many times at once. Only one delivery may settle the order.
func TestConcurrentWebhooks_CreditOnce(t *testing.T) {
	app := newTestAppWith(t, testAppOptions{})
	account, token := app.seedAccount(t, domain.RoleUser, 0)
	orderID := app.recharge(t, token, "750")

	const concurrency = 50
	var (
		wg        sync.WaitGroup
		processed atomic.Int64
		duplicate atomic.Int64
	)
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			switch app.webhook(t, orderID, "Success") {
			case "Processed":
				processed.Add(1)
			case "Already processed":
				duplicate.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), processed.Load())
	assert.Equal(t, int64(concurrency-1), duplicate.Load())
	assert.Equal(t, int64(75000), app.accounts.balance(account.ID))
	app.assertReconciled(t, account.ID)
}

// TestConcurrentSettlementPaths races the three ways a recharge can settle:
// the gateway webhook, a user status poll and an admin approval.
func TestConcurrentSettlementPaths(t *testing.T) {
	app := newTestAppWith(t, testAppOptions{})
	account, token := app.seedAccount(t, domain.RoleUser, 0)
	_, adminToken := app.seedAccount(t, domain.RoleAdmin, 0)

	const orders = 10
	ids := make([]string, orders)
	for i := range ids {
		ids[i] = app.recharge(t, token, "100")
		app.gateway.setStatus(ids[i], "Success", "100.00")
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(3)
		go func(id string) {
			defer wg.Done()
			app.webhook(t, id, "Success")
		}(id)
		go func(id string) {
			defer wg.Done()
			resp := app.postJSON(t, "/api/wallet/check-status", token, map[string]string{"order_id": id})
			resp.Body.Close()
		}(id)
		go func(id string) {
			defer wg.Done()
			resp := app.postJSON(t, "/api/admin/transactions/"+id+"/approve", adminToken, nil)
			resp.Body.Close()
		}(id)
	}
	wg.Wait()

	assert.Equal(t, int64(orders*10000), app.accounts.balance(account.ID))
	for _, id := range ids {
		entry, err := app.ledger.GetByOrderID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.LedgerStatusSuccess, entry.Status)
	}
	app.assertReconciled(t, account.ID)
}

// TestConcurrentITRCallbacks posts the same signed checkout callback many
// times at once. The completion claim must let exactly one create records.
func TestConcurrentITRCallbacks(t *testing.T) {
	app := newTestAppWith(t, testAppOptions{})
	_, token := app.seedAccount(t, domain.RoleUser, 0)
	form := app.initiateITR(t, token)

	values := url.Values{
		"status":      {"success"},
		"txnid":       {form.TxnID},
		"amount":      {form.Amount},
		"firstname":   {form.FirstName},
		"email":       {form.Email},
		"productinfo": {form.ProductInfo},
		"mihpayid":    {"MIH-1"},
		"hash":        {payuResponseHash("success", form.Email, form.FirstName, form.ProductInfo, form.Amount, form.TxnID)},
	}

	const concurrency = 20
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer wg.Done()
			resp := app.postForm(t, "/api/payment/itr-callback", values)
			resp.Body.Close()
			assert.Equal(t, http.StatusFound, resp.StatusCode)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, app.services.count())
}

// TestLedgerConservation runs a mixed workload of credits, recharges and
// debits across several accounts, then checks every stored balance against
// the ledger and that no balance went negative.
func TestLedgerConservation(t *testing.T) {
	app := newTestAppWith(t, testAppOptions{})
	ctx := context.Background()

	type user struct {
		id    uuid.UUID
		token string
	}
	users := make([]user, 4)
	for i := range users {
		acc, tok := app.seedAccount(t, domain.RoleUser, 50000)
		users[i] = user{id: acc.ID, token: tok}
	}

	var wg sync.WaitGroup
	for round := 0; round < 10; round++ {
		for i, u := range users {
			wg.Add(3)
			go func(u user) {
				defer wg.Done()
				_, _, _ = app.ledgerSvc.RecordImmediateDebit(ctx, ports.DebitRequest{
					AccountID:   u.id,
					Amount:      9000,
					Category:    domain.CategoryServicePayment,
					Description: "load",
				})
			}(u)
			go func(u user) {
				defer wg.Done()
				_, _, _ = app.ledgerSvc.RecordImmediateCredit(ctx, ports.CreditRequest{
					AccountID:   u.id,
					Amount:      2500,
					Category:    domain.CategoryRefund,
					Description: "load",
				})
			}(u)
			go func(u user, outcome string) {
				defer wg.Done()
				resp := app.postJSON(t, "/api/wallet/recharge", u.token, map[string]any{"amount": "10"})
				if resp.StatusCode != http.StatusCreated {
					resp.Body.Close()
					return
				}
				orderID := decodeData[struct {
					OrderID string `json:"order_id"`
				}](t, resp).OrderID
				app.webhook(t, orderID, outcome)
			}(u, []string{"Success", "Failed"}[(round+i)%2])
		}
	}
	wg.Wait()

	for _, u := range users {
		assert.GreaterOrEqual(t, app.accounts.balance(u.id), int64(0))
		app.assertReconciled(t, u.id)
	}

	stats, err := app.ledger.GetStats(ctx, time.Time{})
	require.NoError(t, err)
	assert.Zero(t, stats.PendingRecharges)
}

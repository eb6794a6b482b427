package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	accountingdomain "github.com/smallbiznis/platefee/internal/accounting/domain"
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	ledgerdomain "github.com/smallbiznis/platefee/internal/ledger/domain"
)

func TestCommissionEndpointEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	rid := ts.createRestaurant(t, "Kebab Korner")

	for _, order := range []gin.H{
		{"restaurant_id": rid, "original_total": 20000, "placed_at": "2025-06-03T12:00:00Z"},
		{"restaurant_id": rid, "original_total": 30000, "coupon_discount": 5000, "coupon_code": "WELCOME", "placed_at": "2025-06-07T19:30:00Z"},
	} {
		if w := ts.do(t, http.MethodPost, "/api/orders", order); w.Code != http.StatusOK {
			t.Fatalf("record order: status %d body %s", w.Code, w.Body.String())
		}
	}

	w := ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/commission", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("commission: status %d body %s", w.Code, w.Body.String())
	}

	var summary ledgerdomain.CommissionSummary
	decodeData(t, w, &summary)
	if summary.PendingCommission != 2250 {
		t.Fatalf("expected pending 2250, got %d", summary.PendingCommission)
	}

	// Settle and verify nothing remains owed.
	if w := ts.do(t, http.MethodPost, "/api/restaurants/"+rid+"/invoices/2025-06-02/pay", nil); w.Code != http.StatusOK {
		t.Fatalf("pay: status %d body %s", w.Code, w.Body.String())
	}

	w = ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/commission", nil)
	var settled ledgerdomain.CommissionSummary
	decodeData(t, w, &settled)
	if settled.PendingCommission != 0 {
		t.Fatalf("expected zero pending after payment, got %d", settled.PendingCommission)
	}
}

func TestInvoiceHistoryEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rid := ts.createRestaurant(t, "Dumpling House")

	ts.do(t, http.MethodPost, "/api/orders", gin.H{
		"restaurant_id": rid, "original_total": 50000, "coupon_discount": 5000, "placed_at": "2025-06-04T12:00:00Z",
	})

	w := ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/invoices", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("invoices: status %d body %s", w.Code, w.Body.String())
	}

	var invoices []accountingdomain.Invoice
	decodeData(t, w, &invoices)
	if len(invoices) != 1 {
		t.Fatalf("expected 1 invoice, got %d", len(invoices))
	}
	if invoices[0].Status != accountingdomain.InvoiceStatusOverdue {
		t.Fatalf("expected overdue invoice, got %s", invoices[0].Status)
	}
	if invoices[0].NetCommission != 2250 {
		t.Fatalf("expected commission 2250, got %d", invoices[0].NetCommission)
	}
}

func TestAccountingStatusEndpointEscalates(t *testing.T) {
	ts := newTestServer(t)
	rid := ts.createRestaurant(t, "Curry Corner")

	ts.do(t, http.MethodPost, "/api/orders", gin.H{
		"restaurant_id": rid, "original_total": 50000, "placed_at": "2025-06-04T12:00:00Z",
	})

	w := ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/accounting-status", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status: status %d body %s", w.Code, w.Body.String())
	}

	var status accountingdomain.AccountingStatus
	decodeData(t, w, &status)
	if status.LevelName != "WARNING" {
		t.Fatalf("expected WARNING, got %s", status.LevelName)
	}

	ts.fake.Advance(10 * 24 * time.Hour)

	w = ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/accounting-status", nil)
	decodeData(t, w, &status)
	if !status.LockedOut {
		t.Fatalf("expected lockout, got %s", status.LevelName)
	}
}

func TestStatementEndpointServesPDF(t *testing.T) {
	ts := newTestServer(t)
	rid := ts.createRestaurant(t, "Taco Town")

	ts.do(t, http.MethodPost, "/api/orders", gin.H{
		"restaurant_id": rid, "original_total": 40000, "placed_at": "2025-06-04T12:00:00Z",
	})

	w := ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/invoices/2025-06-02/statement.pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("statement: status %d body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf content type, got %s", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatalf("expected PDF payload")
	}
}

func TestErrorMapping(t *testing.T) {
	ts := newTestServer(t)

	// Unknown restaurant -> 404.
	if w := ts.do(t, http.MethodGet, "/api/restaurants/987654321/commission", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown restaurant, got %d", w.Code)
	}

	// Malformed body -> 400 validation envelope.
	w := ts.do(t, http.MethodPost, "/api/restaurants", gin.H{"email": "no-name@example.com"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "validation_error") {
		t.Fatalf("expected validation envelope, got %s", w.Body.String())
	}

	// Tuesday is not a billing period key -> 400.
	rid := ts.createRestaurant(t, "Pizza Planet")
	ts.do(t, http.MethodPost, "/api/orders", gin.H{
		"restaurant_id": rid, "original_total": 10000, "placed_at": "2025-06-04T12:00:00Z",
	})
	if w := ts.do(t, http.MethodPost, "/api/restaurants/"+rid+"/invoices/2025-06-03/pay", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad period key, got %d", w.Code)
	}

	// Paying a week with no orders is a no-op success, not an error.
	if w := ts.do(t, http.MethodPost, "/api/restaurants/"+rid+"/invoices/2025-05-26/pay", nil); w.Code != http.StatusOK {
		t.Fatalf("expected 200 no-op for orderless week, got %d", w.Code)
	}

	// A statement for a week with no orders -> 404.
	if w := ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/invoices/2025-05-26/statement.pdf", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for orderless statement, got %d", w.Code)
	}
}

func TestAuditLogEndpointPaginates(t *testing.T) {
	ts := newTestServer(t)
	rid := ts.createRestaurant(t, "Sushi Stop")

	for _, placedAt := range []string{"2025-06-03T12:00:00Z", "2025-06-10T12:00:00Z", "2025-06-17T12:00:00Z"} {
		ts.do(t, http.MethodPost, "/api/orders", gin.H{
			"restaurant_id": rid, "original_total": 10000, "placed_at": placedAt,
		})
	}

	// Two individual settlements plus a pay-all leaves three audit entries.
	for _, key := range []string{"2025-06-02", "2025-06-09"} {
		if w := ts.do(t, http.MethodPost, "/api/restaurants/"+rid+"/invoices/"+key+"/pay", nil); w.Code != http.StatusOK {
			t.Fatalf("pay %s: status %d body %s", key, w.Code, w.Body.String())
		}
	}
	if w := ts.do(t, http.MethodPost, "/api/restaurants/"+rid+"/pay", nil); w.Code != http.StatusOK {
		t.Fatalf("pay all: status %d body %s", w.Code, w.Body.String())
	}

	w := ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/audit-logs?page_size=2", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("audit logs: status %d body %s", w.Code, w.Body.String())
	}

	var page auditdomain.ListAuditLogResponse
	decodeData(t, w, &page)
	if len(page.Logs) != 2 {
		t.Fatalf("expected 2 logs on first page, got %d", len(page.Logs))
	}
	if !page.HasMore || page.NextPageToken == "" {
		t.Fatalf("expected more pages, got has_more=%v token=%q", page.HasMore, page.NextPageToken)
	}

	w = ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/audit-logs?page_size=2&page_token="+url.QueryEscape(page.NextPageToken), nil)
	var next auditdomain.ListAuditLogResponse
	decodeData(t, w, &next)
	if len(next.Logs) != 1 || next.HasMore {
		t.Fatalf("expected final page of 1, got %d logs has_more=%v", len(next.Logs), next.HasMore)
	}

	// Filtering by action narrows to the summary entry.
	w = ts.do(t, http.MethodGet, "/api/restaurants/"+rid+"/audit-logs?action=commissions.mark_all_paid", nil)
	var filtered auditdomain.ListAuditLogResponse
	decodeData(t, w, &filtered)
	if len(filtered.Logs) != 1 {
		t.Fatalf("expected 1 summary entry, got %d", len(filtered.Logs))
	}
}

func TestRequestIDPropagation(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health: %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected generated request id header")
	}
}

package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/prometheus/client_golang/prometheus"
	accountingservice "github.com/smallbiznis/platefee/internal/accounting/service"
	auditdomain "github.com/smallbiznis/platefee/internal/audit/domain"
	auditservice "github.com/smallbiznis/platefee/internal/audit/service"
	"github.com/smallbiznis/platefee/internal/cache"
	"github.com/smallbiznis/platefee/internal/clock"
	"github.com/smallbiznis/platefee/internal/config"
	ledgerservice "github.com/smallbiznis/platefee/internal/ledger/service"
	orderdomain "github.com/smallbiznis/platefee/internal/order/domain"
	orderservice "github.com/smallbiznis/platefee/internal/order/service"
	paymentdomain "github.com/smallbiznis/platefee/internal/payment/domain"
	paymentservice "github.com/smallbiznis/platefee/internal/payment/service"
	penaltyservice "github.com/smallbiznis/platefee/internal/penalty/service"
	"github.com/smallbiznis/platefee/internal/providers/pdf"
	restaurantdomain "github.com/smallbiznis/platefee/internal/restaurant/domain"
	restaurantservice "github.com/smallbiznis/platefee/internal/restaurant/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testServer struct {
	srv  *Server
	fake *clock.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&restaurantdomain.Restaurant{},
		&orderdomain.Order{},
		&paymentdomain.PaymentRecord{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	log := zap.NewNop()
	fake := clock.NewFakeClock(time.Date(2025, 6, 20, 10, 0, 0, 0, time.UTC))
	policy := config.NewStaticEnforcementConfigHolder(config.DefaultEnforcementConfig())

	restSvc := restaurantservice.NewService(restaurantservice.Params{DB: db, Log: log, GenID: node})
	orderSvc := orderservice.NewService(orderservice.Params{DB: db, Log: log, GenID: node})
	paymentSvc := paymentservice.NewService(paymentservice.Params{DB: db, Log: log, GenID: node, Clock: fake})
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{Log: log, Policy: policy})
	penaltySvc := penaltyservice.NewService(penaltyservice.Params{Log: log, Policy: policy})
	auditSvc := auditservice.NewService(auditservice.Params{DB: db, Log: log})

	acctSvc := accountingservice.NewService(accountingservice.Params{
		Log:         log,
		Clock:       fake,
		Policy:      policy,
		Restaurants: restSvc,
		Orders:      orderSvc,
		Payments:    paymentSvc,
		Ledger:      ledgerSvc,
		Penalty:     penaltySvc,
		Audit:       auditSvc,
		Cache:       cache.NewStatusCache(config.Config{}, log),
		PDF:         pdf.New(),
	})

	engine := NewEngine(log, prometheus.NewRegistry())
	srv := NewServer(ServerParams{
		Gin:           engine,
		Cfg:           config.Config{},
		GenID:         node,
		RestaurantSvc: restSvc,
		OrderSvc:      orderSvc,
		PaymentSvc:    paymentSvc,
		AccountingSvc: acctSvc,
		AuditSvc:      auditSvc,
	})

	return &testServer{srv: srv, fake: fake}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	ts.srv.Engine().ServeHTTP(w, req)
	return w
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body: %s)", err, w.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("decode data: %v (body: %s)", err, w.Body.String())
	}
}

func (ts *testServer) createRestaurant(t *testing.T, name string) string {
	t.Helper()

	w := ts.do(t, http.MethodPost, "/api/restaurants", gin.H{
		"name":  name,
		"email": "owner@example.com",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create restaurant: status %d body %s", w.Code, w.Body.String())
	}

	var restaurant restaurantdomain.Restaurant
	decodeData(t, w, &restaurant)
	return restaurant.ID.String()
}

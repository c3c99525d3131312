package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"freelink/internal/config"
	"freelink/internal/handlers"
	"freelink/internal/middleware"
	"freelink/internal/models"
	"freelink/internal/repositories/memory"
	"freelink/internal/services/auth"
	"freelink/internal/services/escrow"
	"freelink/internal/services/transaction"
	"freelink/internal/services/wallet"
	"freelink/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const password = "Passw0rd!"

type testAPI struct {
	t     *testing.T
	app   *fiber.App
	store *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	store := memory.NewStore()
	tokens := utils.NewTokenManager(config.Config{
		JWTSecret:       "access",
		RefreshSecret:   "refresh",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	metrics := wallet.NewCounterMetrics(logger)
	health := handlers.NewHealthHandler("test", map[string]handlers.Check{"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() }})

	app := fiber.New()
	SetupRoutes(app, Deps{
		Auth:         auth.NewService(store, tokens, "USD", logger),
		Wallets:      wallet.NewService(store, nil, nil, wallet.Config{}, logger, metrics),
		Transactions: transaction.NewService(store, nil, logger),
		Escrows:      escrow.NewService(store, nil, nil, logger),
		Tokens:       tokens,
		Idempotency:  middleware.Idempotency(rdb, middleware.IdempotencyConfig{TTL: time.Hour, LockTimeout: 10 * time.Second}, logger),
		Health:       health.WithCounters("wallet", metrics.Snapshot),
		Logger:       logger,
	})
	return &testAPI{t: t, app: app, store: store}
}

func (a *testAPI) call(method, path, token string, body interface{}, headers ...string) (int, map[string]interface{}) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 {
		require.NoError(a.t, json.Unmarshal(raw, &out), string(raw))
	}
	return resp.StatusCode, out
}

func (a *testAPI) register(name, role string) uint {
	a.t.Helper()
	status, body := a.call("POST", "/api/auth/register", "", fiber.Map{
		"username": name,
		"email":    name + "@example.com",
		"phone":    "+1555" + name,
		"password": password,
		"role":     role,
	})
	require.Equal(a.t, fiber.StatusCreated, status, body)
	return uint(body["user"].(map[string]interface{})["id"].(float64))
}

func (a *testAPI) login(name string) string {
	a.t.Helper()
	status, body := a.call("POST", "/api/auth/login", "", fiber.Map{"login": name, "password": password})
	require.Equal(a.t, fiber.StatusOK, status, body)
	return body["access_token"].(string)
}

func (a *testAPI) seedStaff() uint {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(a.t, err)
	staff := &models.User{Username: "admin", Email: "admin@example.com", Phone: "+1000", Password: string(hash), IsStaff: true, IsVerified: true}
	require.NoError(a.t, a.store.Users().Create(context.Background(), staff))
	return staff.ID
}

func (a *testAPI) wallet(token string) (decimal.Decimal, decimal.Decimal) {
	a.t.Helper()
	status, body := a.call("GET", "/api/wallet", token, nil)
	require.Equal(a.t, fiber.StatusOK, status, body)
	w := body["wallet"].(map[string]interface{})
	return decimal.RequireFromString(w["balance"].(string)), decimal.RequireFromString(w["held"].(string))
}

func id(body map[string]interface{}, key string) uint {
	return uint(body[key].(map[string]interface{})["id"].(float64))
}

type parties struct {
	client, freelancer, staff string
	freelancerID              uint
}

func (a *testAPI) setup() parties {
	a.t.Helper()
	clientID := a.register("ana", "client")
	freelancerID := a.register("ben", "freelancer")
	a.seedStaff()

	p := parties{client: a.login("ana"), freelancer: a.login("ben"), staff: a.login("admin"), freelancerID: freelancerID}

	status, _ := a.call("POST", fmt.Sprintf("/api/admin/users/%d/verify", clientID), p.staff, nil)
	require.Equal(a.t, fiber.StatusOK, status)

	status, body := a.call("POST", "/api/wallet/deposit", p.client, fiber.Map{"amount": "150.00", "reason": "top up"})
	require.Equal(a.t, fiber.StatusOK, status, body)
	return p
}

func (a *testAPI) escrow(p parties, amount string) uint {
	a.t.Helper()
	status, body := a.call("POST", "/api/transactions", p.client, fiber.Map{
		"freelancer_id": p.freelancerID,
		"amount":        amount,
		"description":   "logo design",
	})
	require.Equal(a.t, fiber.StatusCreated, status, body)
	txID := id(body, "transaction")

	status, body = a.call("POST", "/api/escrows", p.client, fiber.Map{"transaction_id": txID})
	require.Equal(a.t, fiber.StatusCreated, status, body)
	return id(body, "escrow")
}

func TestReleaseFlow(t *testing.T) {
	api := newTestAPI(t)
	p := api.setup()
	escrowID := api.escrow(p, "100")

	balance, held := api.wallet(p.client)
	assert.True(t, balance.Equal(decimal.NewFromInt(50)), balance.String())
	assert.True(t, held.Equal(decimal.NewFromInt(100)), held.String())

	// The freelancer cannot release their own payment.
	status, body := api.call("POST", fmt.Sprintf("/api/escrows/%d/release", escrowID), p.freelancer, nil)
	assert.Equal(t, fiber.StatusForbidden, status, body)

	status, body = api.call("POST", fmt.Sprintf("/api/escrows/%d/release", escrowID), p.client, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "RELEASED", body["escrow"].(map[string]interface{})["status"])

	balance, held = api.wallet(p.client)
	assert.True(t, balance.Equal(decimal.NewFromInt(50)))
	assert.True(t, held.IsZero())
	freelancerBalance, _ := api.wallet(p.freelancer)
	assert.True(t, freelancerBalance.Equal(decimal.NewFromInt(100)))

	status, body = api.call("POST", fmt.Sprintf("/api/escrows/%d/refund", escrowID), p.freelancer, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INVALID_ESCROW_STATE", body["code"])
}

func TestDisputeRefundFlow(t *testing.T) {
	api := newTestAPI(t)
	p := api.setup()
	escrowID := api.escrow(p, "100")

	status, body := api.call("POST", fmt.Sprintf("/api/escrows/%d/dispute", escrowID), p.client, fiber.Map{"reason": ""})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "DISPUTE_REASON_REQUIRED", body["code"])

	status, body = api.call("POST", fmt.Sprintf("/api/escrows/%d/dispute", escrowID), p.client, fiber.Map{"reason": "work not delivered"})
	require.Equal(t, fiber.StatusCreated, status, body)
	disputeID := id(body, "dispute")

	status, _ = api.call("GET", "/api/admin/disputes?status=OPEN", p.client, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = api.call("GET", "/api/admin/disputes?status=OPEN", p.staff, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Len(t, body["disputes"], 1)

	resolvePath := fmt.Sprintf("/api/admin/disputes/%d/resolve", disputeID)
	status, _ = api.call("POST", resolvePath, p.staff, fiber.Map{"resolution": "MAYBE"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = api.call("POST", resolvePath, p.staff, fiber.Map{"resolution": "REFUND", "notes": "no delivery"})
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "RESOLVED", body["dispute"].(map[string]interface{})["status"])

	balance, held := api.wallet(p.client)
	assert.True(t, balance.Equal(decimal.NewFromInt(150)), balance.String())
	assert.True(t, held.IsZero())

	status, body = api.call("GET", fmt.Sprintf("/api/escrows/%d", escrowID), p.freelancer, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "REFUNDED", body["escrow"].(map[string]interface{})["status"])
	disputes := body["disputes"].([]interface{})
	require.Len(t, disputes, 1)
	assert.Equal(t, "RESOLVED", disputes[0].(map[string]interface{})["status"])
}

func TestCancelDisputeFlow(t *testing.T) {
	api := newTestAPI(t)
	p := api.setup()
	escrowID := api.escrow(p, "40")

	status, body := api.call("POST", fmt.Sprintf("/api/escrows/%d/dispute", escrowID), p.freelancer, fiber.Map{"reason": "client unresponsive"})
	require.Equal(t, fiber.StatusCreated, status, body)
	disputeID := id(body, "dispute")

	status, _ = api.call("POST", fmt.Sprintf("/api/disputes/%d/cancel", disputeID), p.client, nil)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, body = api.call("POST", fmt.Sprintf("/api/disputes/%d/cancel", disputeID), p.freelancer, nil)
	require.Equal(t, fiber.StatusOK, status, body)
	assert.Equal(t, "CANCELLED", body["dispute"].(map[string]interface{})["status"])

	status, body = api.call("GET", fmt.Sprintf("/api/escrows/%d", escrowID), p.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "HELD", body["escrow"].(map[string]interface{})["status"])
}

func TestWalletEndpoints(t *testing.T) {
	api := newTestAPI(t)
	p := api.setup()

	status, body := api.call("POST", "/api/wallet/withdraw", p.client, fiber.Map{"amount": "500"})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_BALANCE", body["code"])

	status, _ = api.call("POST", "/api/wallet/withdraw", p.client, fiber.Map{"amount": "1.001"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = api.call("POST", "/api/wallet/withdraw", p.client, fiber.Map{"amount": "20"})
	require.Equal(t, fiber.StatusOK, status, body)

	status, body = api.call("GET", "/api/wallet/history?limit=1", p.client, nil)
	require.Equal(t, fiber.StatusOK, status)
	entries := body["data"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, "DEBIT", entries[0].(map[string]interface{})["type"])
	assert.Equal(t, float64(2), body["pagination"].(map[string]interface{})["total"])

	// No gateway is configured.
	status, body = api.call("POST", "/api/wallet/fund", p.client, fiber.Map{"amount": "10", "payment_method": "pm_card_visa"})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "PAYMENT_UNAVAILABLE", body["code"])

	status, body = api.call("PUT", "/api/wallet/payout-account", p.client, fiber.Map{"account_id": "acct_1"})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "PAYMENT_UNAVAILABLE", body["code"])

	status, body = api.call("POST", "/api/wallet/payout", p.client, fiber.Map{"amount": "10"})
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "PAYMENT_UNAVAILABLE", body["code"])
}

func TestDepositIsIdempotent(t *testing.T) {
	api := newTestAPI(t)
	p := api.setup()

	for i := 0; i < 2; i++ {
		status, body := api.call("POST", "/api/wallet/deposit", p.client, fiber.Map{"amount": "5"}, middleware.IdempotencyHeader, "dep-1")
		require.Equal(t, fiber.StatusOK, status, body)
	}

	balance, _ := api.wallet(p.client)
	assert.True(t, balance.Equal(decimal.NewFromInt(155)), balance.String())
}

func TestAuthRoutes(t *testing.T) {
	api := newTestAPI(t)
	api.register("ana", "client")

	status, _ := api.call("GET", "/api/wallet", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, body := api.call("POST", "/api/auth/register", "", fiber.Map{
		"username": "ana", "email": "ana2@example.com", "phone": "+2", "password": password, "role": "client",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "USER_EXISTS", body["code"])

	status, _ = api.call("POST", "/api/auth/login", "", fiber.Map{"login": "ana", "password": "nope"})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	token := api.login("ana")
	status, _ = api.call("POST", "/api/auth/logout", token, nil)
	require.Equal(t, fiber.StatusOK, status)

	status, body = api.call("GET", "/api/auth/me", token, nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "session expired", body["error"])
}

func TestUnverifiedClientCannotCreateTransaction(t *testing.T) {
	api := newTestAPI(t)
	api.register("ana", "client")
	freelancerID := api.register("ben", "freelancer")
	token := api.login("ana")

	status, body := api.call("POST", "/api/transactions", token, fiber.Map{"freelancer_id": freelancerID, "amount": "10"})
	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "NOT_VERIFIED_CLIENT", body["code"])
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)
	status, body := api.call("GET", "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestHealthStatsCountWalletActivity(t *testing.T) {
	api := newTestAPI(t)
	p := api.setup()

	status, body := api.call("POST", "/api/wallet/deposit", p.client, fiber.Map{"amount": "5"})
	require.Equal(t, fiber.StatusOK, status, body)
	status, _ = api.call("POST", "/api/wallet/withdraw", p.client, fiber.Map{"amount": "5000"})
	require.Equal(t, fiber.StatusConflict, status)

	status, body = api.call("GET", "/health/stats", "", nil)
	require.Equal(t, fiber.StatusOK, status)
	counters := body["stats"].(map[string]interface{})["wallet"].(map[string]interface{})
	// setup funds the client once before this test's deposit.
	assert.Equal(t, float64(2), counters["op.deposit.success"])
	assert.Equal(t, float64(1), counters["op.withdraw.failure"])
}

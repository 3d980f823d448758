package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"loyalty/config"
	"loyalty/internal/delivery/api/middleware"
	"loyalty/internal/delivery/api/router"
	"loyalty/internal/delivery/api/router/handler"
	"loyalty/internal/domain/entity"
	"loyalty/internal/domain/service"
	"loyalty/internal/infra/auth"
	"loyalty/internal/infra/persistence/memory"
	"loyalty/internal/infra/qrcode"
	"loyalty/internal/usecase/impl"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-access-secret"

type apiFixture struct {
	echo   *echo.Echo
	store  *memory.Store
	client entity.Client
	token  string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	cfg := &config.Config{
		Loyalty: &config.LoyaltyConfig{
			DefaultCoinValue: 800,
			TxTimeout:        time.Second,
			TxMaxRetries:     2,
			RetryBackoff:     time.Millisecond,
			ReservationTTL:   15 * time.Minute,
			HistoryPageLimit: 20,
		},
	}
	cfg.HTTP.MaxRequestBodySize = "100KB"
	cfg.SecretKey.Access = testSecret
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.NewStore(memory.WithTxTimeout(time.Second))
	repos := store.Repositories()
	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	coinUC := impl.NewCoinService(impl.CoinServiceParams{
		ClientRepo:  repos.NewClientRepository(),
		RuleRepo:    repos.NewRuleRepository(),
		HistoryRepo: repos.NewCoinHistoryRepository(),
		Config:      cfg,
		Logger:      logger,
	})
	voucherUC := impl.NewVoucherService(impl.VoucherServiceParams{
		TxManager:         store,
		RuleRepo:          repos.NewRuleRepository(),
		ClientVoucherRepo: repos.NewClientVoucherRepository(),
		Logger:            logger,
	})
	redemptionUC := impl.NewRedemptionService(impl.RedemptionServiceParams{
		TxManager: store,
		QRService: qrcode.NewQRCodeService(128, "L"),
		Config:    cfg,
		Logger:    logger,
	})
	ratingUC := impl.NewRatingService(impl.RatingServiceParams{
		TxManager:  store,
		OrderRepo:  repos.NewOrderRepository(),
		RatingRepo: repos.NewRatingRepository(),
		Config:     cfg,
		Logger:     logger,
	})

	e := NewEcho(cfg, logger, router.RouterParams{
		CoinHandler: handler.NewCoinHandler(handler.CoinHandlerParams{
			CoinUC: coinUC, RedemptionUC: redemptionUC, Logger: logger,
		}),
		VoucherHandler: handler.NewVoucherHandler(handler.VoucherHandlerParams{
			VoucherUC: voucherUC, RedemptionUC: redemptionUC, Logger: logger,
		}),
		RatingHandler: handler.NewRatingHandler(handler.RatingHandlerParams{
			RatingUC: ratingUC, Logger: logger,
		}),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthMiddlewareParams{
			TokenService: tokenSvc, Logger: logger,
		}),
	})

	client := store.SeedClient(entity.Client{FullName: "Rina", Level: "Silver", CoinBalance: 100})

	return &apiFixture{
		echo:   e,
		store:  store,
		client: client,
		token:  signAccessToken(t, client.ID),
	}
}

func signAccessToken(t *testing.T, clientID uuid.UUID) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, service.Claims{
		ClientID: clientID,
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string         `json:"code"`
		Message string         `json:"message"`
		Details map[string]any `json:"details"`
	} `json:"error"`
	Meta struct {
		RequestID string `json:"request_id"`
	} `json:"meta"`
}

func (fx *apiFixture) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+fx.token)
	rec := httptest.NewRecorder()
	fx.echo.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}

	return rec, env
}

func TestServer_Health(t *testing.T) {
	fx := newAPIFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	fx.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-123", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, rec.Body.String(), `"request_id":"req-123"`)
}

func TestServer_RequiresBearerToken(t *testing.T) {
	fx := newAPIFixture(t)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing", header: ""},
		{name: "not bearer", header: "Basic abc"},
		{name: "bad signature", header: "Bearer " + fx.token + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/coins/balance", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			fx.echo.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestServer_CoinEndpoints(t *testing.T) {
	fx := newAPIFixture(t)
	fx.store.SeedCoinRule(entity.CoinRule{
		CoinValue:            800,
		MinTransactionForUse: 20000,
		MinTransactionHigh:   100000,
		MaxCoinMid:           20,
		MaxCoinHigh:          50,
	})

	rec, env := fx.do(t, http.MethodGet, "/api/v1/coins/balance", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var balance entity.CoinBalance
	require.NoError(t, json.Unmarshal(env.Data, &balance))
	assert.Equal(t, int64(80000), balance.CurrencyValue)
	assert.Equal(t, "Rina", balance.ClientName)

	rec, env = fx.do(t, http.MethodPost, "/api/v1/coins/preview", `{"coins_to_use":60,"order_total":150000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "EXCEEDS_COIN_CAP", env.Error.Code)
	assert.Equal(t, float64(50), env.Error.Details["max_coin"])

	rec, env = fx.do(t, http.MethodPost, "/api/v1/coins/preview", `{"order_total":150000}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
	assert.Equal(t, "required", env.Error.Details["coins_to_use"])

	body := `{"coins_to_use":40,"order_total":150000,"order_id":"` + uuid.NewString() + `"}`
	rec, _ = fx.do(t, http.MethodPost, "/api/v1/coins/commit", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(60), fx.store.Client(fx.client.ID).CoinBalance)

	rec, env = fx.do(t, http.MethodGet, "/api/v1/coins/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"total":1`)

	rec, _ = fx.do(t, http.MethodGet, "/api/v1/coins/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_VoucherReservationFlow(t *testing.T) {
	fx := newAPIFixture(t)
	amount := int64(5000)
	fx.store.SeedVoucherRule(entity.VoucherRule{
		Code:              "POTONG5K",
		Description:       "Potongan langsung",
		DiscountAmount:    &amount,
		IsActive:          true,
		MaxUsagePerClient: 1,
	})

	rec, _ := fx.do(t, http.MethodPost, "/api/v1/vouchers/claim", `{"code":"POTONG5K"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := fx.do(t, http.MethodPost, "/api/v1/vouchers/claim", `{"code":"POTONG5K"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "VOUCHER_ALREADY_CLAIMED", env.Error.Code)

	rec, env = fx.do(t, http.MethodPost, "/api/v1/vouchers/reservations", `{"code":"POTONG5K","order_total":40000,"payment_method":"cash"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var reserved entity.VoucherValidation
	require.NoError(t, json.Unmarshal(env.Data, &reserved))
	require.NotNil(t, reserved.ReservationID)

	rec, _ = fx.do(t, http.MethodGet, "/api/v1/vouchers/reservations/"+reserved.ReservationID.String()+"/qr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get(echo.HeaderContentType))

	body := `{"token":"` + reserved.ReservationID.String() + `","order_id":"` + uuid.NewString() + `"}`
	rec, _ = fx.do(t, http.MethodPost, "/api/v1/vouchers/reservations/redeem", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env = fx.do(t, http.MethodPost, "/api/v1/vouchers/reservations/redeem", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "RESERVATION_ALREADY_CONSUMED", env.Error.Code)

	rec, env = fx.do(t, http.MethodPost, "/api/v1/vouchers/reservations/redeem", `{"order_id":"`+uuid.NewString()+`"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_FAILED", env.Error.Code)
}

func TestServer_RatingEndpoints(t *testing.T) {
	fx := newAPIFixture(t)
	operator := fx.store.SeedStaff(entity.Staff{FullName: "Agus", Role: entity.StaffRoleOperator})
	order := fx.store.SeedOrder(entity.Order{
		ClientID:  fx.client.ID,
		OrderCode: "ORD-1",
		Total:     50000,
		Status:    entity.OrderStatusCompleted,
		Items:     []*entity.OrderItem{{ProductName: "Stiker", OperatorID: &operator.ID}},
	})

	body := `{"order_id":"` + order.ID.String() + `","user_type":"Operator","rating":4}`
	rec, _ := fx.do(t, http.MethodPost, "/api/v1/ratings", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = fx.do(t, http.MethodPost, "/api/v1/ratings", strings.Replace(body, `"rating":4`, `"rating":5`, 1))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 5.0, fx.store.Staff(operator.ID).Rating, 1e-9)

	rec, env := fx.do(t, http.MethodPost, "/api/v1/ratings", strings.Replace(body, `"rating":4`, `"rating":9`, 1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_RATING", env.Error.Code)

	rec, env = fx.do(t, http.MethodGet, "/api/v1/orders/"+order.ID.String()+"/ratings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"staff_name":"Agus"`)

	rec, _ = fx.do(t, http.MethodGet, "/api/v1/orders/not-a-uuid/ratings", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = fx.do(t, http.MethodGet, "/api/v1/ratings/pending", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"roles_needed":["admin","desainer"]`)
}

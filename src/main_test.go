package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fcshop/src/db"
	"fcshop/src/payments"
	"fcshop/src/types"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}))
	require.NoError(t, err)

	db.NewDB(gormDB)
	return mock
}

func expectEmptySweep(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM "ticket_holds"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
}

func TestHealthRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupMockDB(t)
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", gjson.Get(w.Body.String(), "status").String())
}

func TestEventsRequireResolvedMember(t *testing.T) {
	gin.SetMode(gin.TestMode)
	setupMockDB(t)
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/events", nil)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("X-Member-ID", "not-a-number")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := setupRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email"}).AddRow(1, "fan@example.test"))
	expectEmptySweep(mock)
	mock.ExpectQuery(`SELECT (.+) FROM "events"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "ticket_price", "capacity", "available"}).
			AddRow(1, "Home Derby", 40.0, 100, 97))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/events", nil)
	req.Header.Set("X-Member-ID", "1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "count").Int())
	assert.Equal(t, "Home Derby", gjson.Get(body, "data.0.name").String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

type walletStub struct {
	status payments.ConfirmationStatus
}

func (s *walletStub) Name() types.Processor { return types.PROCESSOR_WALLET }

func (s *walletStub) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (string, string, error) {
	return "ORD-STUB", "ORD-STUB", nil
}

func (s *walletStub) Confirm(ctx context.Context, reference string) (payments.ConfirmationStatus, error) {
	return s.status, nil
}

func swapWalletGateway(t *testing.T, status payments.ConfirmationStatus) {
	t.Helper()
	orig, err := payments.For(types.PROCESSOR_WALLET)
	require.NoError(t, err)
	t.Cleanup(func() { payments.Register(orig) })
	payments.Register(&walletStub{status: status})
}

const paypalCaptureBody = `{
	"event_type": "PAYMENT.CAPTURE.COMPLETED",
	"resource": {
		"id": "CAP-1",
		"supplementary_data": {"related_ids": {"order_id": "ORD-1"}}
	}
}`

func TestPayPalWebhookRejectsUnconfirmedCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	swapWalletGateway(t, payments.CONFIRM_PENDING)
	router := setupRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/webhook/paypal", strings.NewReader(paypalCaptureBody))
	router.ServeHTTP(w, req)

	// Nothing settles off the body alone: the processor never reported the
	// capture as completed, so no settlement query is ever issued.
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayPalWebhookSettlesConfirmedCapture(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	swapWalletGateway(t, payments.CONFIRM_SUCCEEDED)
	router := setupRouter()

	settled := time.Now().Add(-time.Minute)
	mock.ExpectQuery(`SELECT (.+) FROM "payment_records"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "member_id", "amount", "processor", "transaction_reference",
			"status", "cashback_redeemed", "cashback_accrued", "confirmed_holds", "created_at",
		}).AddRow(
			3, 10, 85.0, string(types.PROCESSOR_WALLET), "ORD-1",
			string(types.PAYMENT_COMPLETED), 10.0, 1.7, []byte(`["b6f8c4"]`), settled,
		))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/webhook/paypal", strings.NewReader(paypalCaptureBody))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReserveUnknownMember(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := setupMockDB(t)
	router := setupRouter()

	mock.ExpectQuery(`SELECT (.+) FROM "members"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/events/1/reserve", nil)
	req.Header.Set("X-Member-ID", "99")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

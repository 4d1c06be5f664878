// internal/server/server_test.go
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-assistant/internal/annotator"
	"sales-assistant/internal/chat"
	"sales-assistant/internal/common/config"
	"sales-assistant/internal/common/database"
	"sales-assistant/internal/common/logger"
	"sales-assistant/internal/convo"
	"sales-assistant/internal/erp"
	"sales-assistant/internal/models"
	"sales-assistant/internal/querylog"
	"sales-assistant/internal/store"
)

func fixedClock() time.Time {
	return time.Date(2025, time.August, 29, 10, 30, 0, 0, time.UTC)
}

func newTestServer(t *testing.T) (*Server, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	log := logger.NewNoOpLogger()
	cfg := &config.Config{
		Server: config.ServerConfig{
			Address:        ":0",
			ReadTimeout:    5000,
			WriteTimeout:   5000,
			RequestTimeout: 5000,
		},
	}

	sales := store.NewSalesStore(db, log)
	chatSvc := chat.NewService(chat.Deps{
		Config:     cfg,
		Sales:      sales,
		Accounting: store.NewAccountingStore(db, log),
		Sessions:   convo.NewStore(rdb, config.SessionConfig{TTL: 1800, KeyPrefix: "chat"}, log),
		Live:       erp.NewClient(config.ERPConfig{BaseURL: "http://127.0.0.1:9", Timeout: 200}, fixedClock, log),
		Annotator:  annotator.New(config.AnnotatorConfig{}, log),
		Audit:      querylog.Disabled(),
		Clock:      fixedClock,
		Logger:     log,
	})

	srv := New(cfg, chatSvc, sales,
		&database.PostgresClient{DB: db},
		&database.RedisClient{Client: rdb},
		fixedClock, log)
	return srv, mock
}

func postChat(t *testing.T, router http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestChatEndpointAnswers(t *testing.T) {
	srv, mock := newTestServer(t)
	router := srv.Router()

	rec := postChat(t, router, `{"message": "Why did sales drop?", "role": "ADMIN"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Answer, "cannot determine causes")
	assert.NotEmpty(t, resp.SessionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChatEndpointRejectsUnknownRole(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postChat(t, srv.Router(), `{"message": "hi", "role": "SUPERUSER"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.ErrorFallbackType, resp.Type)
	assert.NotEmpty(t, resp.Answer)
}

func TestRejectedRequestsCarryErrorFallbackShape(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postChat(t, srv.Router(), `{"message": `)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "error_fallback", body["type"])
	assert.NotEmpty(t, body["answer"])
}

func TestChatEndpointRejectsMissingMessage(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postChat(t, srv.Router(), `{"role": "ADMIN"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatEndpointRejectsMalformedJSON(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := postChat(t, srv.Router(), `{"message": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSuggestionsEndpoint(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT DISTINCT EXTRACT\\(YEAR FROM sale_date\\)").
		WillReturnRows(sqlmock.NewRows([]string{"y"}).AddRow(2025).AddRow(2024))
	mock.ExpectQuery("SELECT DISTINCT br_id FROM sales").
		WillReturnRows(sqlmock.NewRows([]string{"br_id"}).AddRow(1).AddRow(2))
	mock.ExpectQuery("SELECT br_id FROM sales GROUP BY br_id").
		WillReturnRows(sqlmock.NewRows([]string{"br_id"}).AddRow(2))

	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp suggestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Suggestions, "Today sales")
	assert.Contains(t, resp.Suggestions, "Compare 2024 and 2025")
	assert.Contains(t, resp.Suggestions, "Which branch has the highest sales in 2025?")
	require.Len(t, resp.Insights, 1)
	assert.Contains(t, resp.Insights[0], "Branch 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSuggestionsOmitComparisonsForStaff(t *testing.T) {
	srv, mock := newTestServer(t)

	mock.ExpectQuery("SELECT DISTINCT EXTRACT\\(YEAR FROM sale_date\\)").
		WillReturnRows(sqlmock.NewRows([]string{"y"}).AddRow(2025).AddRow(2024))
	mock.ExpectQuery("SELECT DISTINCT br_id FROM sales").
		WillReturnRows(sqlmock.NewRows([]string{"br_id"}).AddRow(1))
	mock.ExpectQuery("SELECT br_id FROM sales GROUP BY br_id").
		WillReturnRows(sqlmock.NewRows([]string{"br_id"}).AddRow(1))

	req := httptest.NewRequest(http.MethodGet, "/suggestions?role=staff", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp suggestionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	for _, sg := range resp.Suggestions {
		assert.NotContains(t, sg, "Compare")
		assert.NotContains(t, sg, "Which branch")
	}
}

func TestHealthzReportsOK(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestMetricsEndpointExposed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"olistdash/internal/analytics"
	apierrors "olistdash/internal/errors"
	"olistdash/internal/exporter"
	"olistdash/internal/middleware"
	"olistdash/internal/services"
	"olistdash/pkg/contracts/domain"
)

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) Variant() string {
	return m.Called().String(0)
}

func (m *mockDashboardService) Questions() []domain.QuestionInfo {
	return m.Called().Get(0).([]domain.QuestionInfo)
}

func (m *mockDashboardService) Question(key domain.Question) (domain.QuestionInfo, error) {
	args := m.Called(key)
	return args.Get(0).(domain.QuestionInfo), args.Error(1)
}

func (m *mockDashboardService) Bounds(ctx context.Context) (domain.DateBounds, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.DateBounds), args.Error(1)
}

func (m *mockDashboardService) Run(ctx context.Context, question domain.Question, params analytics.Params) (*domain.QueryResult, error) {
	args := m.Called(ctx, question, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QueryResult), args.Error(1)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, svc DashboardServiceInterface) *httptest.Server {
	t.Helper()
	logger := testLogger()
	h := NewDashboardHandler(svc, exporter.New(logger), middleware.NewValidator(), logger, apierrors.NewErrorHandler(logger, false))
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv
}

func paymentResult() *domain.QueryResult {
	return &domain.QueryResult{
		Info: domain.QuestionInfo{Key: domain.QuestionReviewByPayment, Title: "Review score by payment method"},
		Result: &domain.ResultSet{
			Question: domain.QuestionReviewByPayment,
			Columns: []domain.Column{
				{Name: "payment_type", Type: "string"},
				{Name: "avg_review_score", Type: "number"},
			},
			Rows: [][]interface{}{
				{"boleto", 4.1},
				{"credit_card", 4.05},
			},
		},
		Mode:    domain.FilterModeTop,
		Variant: "silver",
	}
}

func decodeProblem(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestDashboardHandler_ListQuestions(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Variant").Return("silver")
	svc.On("Questions").Return([]domain.QuestionInfo{
		{Key: domain.QuestionDeliveryTime, Title: "Average delivery time"},
		{Key: domain.QuestionReviewByPayment, Title: "Review score by payment method"},
	})
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/questions")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body struct {
		Variant   string                `json:"variant"`
		Questions []domain.QuestionInfo `json:"questions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "silver", body.Variant)
	require.Len(t, body.Questions, 2)
	assert.Equal(t, domain.QuestionDeliveryTime, body.Questions[0].Key)
	svc.AssertExpectations(t)
}

func TestDashboardHandler_GetQuestion(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Question", domain.QuestionTopCategories).
		Return(domain.QuestionInfo{Key: domain.QuestionTopCategories, Title: "Top categories"}, nil)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/questions/top_categories")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var info domain.QuestionInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "Top categories", info.Title)
}

func TestDashboardHandler_UnknownQuestion(t *testing.T) {
	svc := new(mockDashboardService)
	srv := newTestServer(t, svc)

	for _, path := range []string{"/questions/churn", "/query/churn", "/export/churn"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + path)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			body := decodeProblem(t, resp)
			assert.Equal(t, apierrors.TypeQuestionNotFound, body["type"])
			assert.Equal(t, "churn", body["question"])
		})
	}
	svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardHandler_GetBounds(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Bounds", mock.Anything).Return(domain.DateBounds{
		Min: time.Date(2016, 9, 4, 21, 15, 19, 0, time.UTC),
		Max: time.Date(2018, 10, 17, 17, 30, 18, 0, time.UTC),
	}, nil)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/bounds")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "2016-09-04", body["start"])
	assert.Equal(t, "2018-10-17", body["end"])
}

func TestDashboardHandler_GetBounds_NoOrders(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Bounds", mock.Anything).Return(domain.DateBounds{}, services.ErrNoOrders)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/bounds")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apierrors.TypeNotFound, decodeProblem(t, resp)["type"])
}

func TestDashboardHandler_Query(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Run", mock.Anything, domain.QuestionReviewByPayment, mock.MatchedBy(func(p analytics.Params) bool {
		return p.Dates != nil &&
			p.Dates.Start.Equal(time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC)) &&
			p.Mode == domain.FilterModeRange &&
			p.Score != nil && p.Score.Min == 3 && p.Score.Max == 5
	})).Return(paymentResult(), nil)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/query/review_by_payment?start=2017-01-01&end=2017-12-31&mode=range&score_min=3&score_max=5")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var result domain.QueryResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "silver", result.Variant)
	assert.Equal(t, domain.FilterModeTop, result.Mode)
	require.Len(t, result.Result.Rows, 2)
	assert.Equal(t, "boleto", result.Result.Rows[0][0])
	svc.AssertExpectations(t)
}

func TestDashboardHandler_Query_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		query string
		field string
	}{
		{"start without end", "start=2017-01-01", "end"},
		{"bad date", "start=2017-13-01&end=2017-12-31", "start"},
		{"bad mode", "mode=bottom", "mode"},
		{"score above five", "score_max=7", "score_max"},
		{"not a number", "zip_min=abc", "zip_min"},
		{"limit too large", "limit=1000", "limit"},
	}

	svc := new(mockDashboardService)
	srv := newTestServer(t, svc)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/query/delivery_time?" + tt.query)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			body := decodeProblem(t, resp)
			assert.Equal(t, apierrors.TypeValidation, body["type"])

			raw, err := json.Marshal(body["details"])
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"field":"`+tt.field+`"`)
		})
	}
	svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

func TestDashboardHandler_Query_InvertedRange(t *testing.T) {
	svc := new(mockDashboardService)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/query/category_revenue?revenue_min=500&revenue_max=100")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apierrors.TypeInvalidRange, decodeProblem(t, resp)["type"])
}

func TestDashboardHandler_Query_ServiceError(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Run", mock.Anything, domain.QuestionDeliveryTime, mock.Anything).
		Return(nil, context.DeadlineExceeded)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/query/delivery_time")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, apierrors.TypeTimeout, decodeProblem(t, resp)["type"])
}

func TestDashboardHandler_Export_CSV(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Run", mock.Anything, domain.QuestionReviewByPayment, mock.Anything).Return(paymentResult(), nil)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/export/review_by_payment")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="olist_review_by_payment_`)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), `.csv"`)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(strings.TrimPrefix(string(raw), "\ufeff")), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "payment_type,avg_review_score", strings.TrimSpace(lines[0]))
	assert.Equal(t, "boleto,4.1", strings.TrimSpace(lines[1]))
}

func TestDashboardHandler_Export_XLSX(t *testing.T) {
	svc := new(mockDashboardService)
	svc.On("Run", mock.Anything, domain.QuestionReviewByPayment, mock.Anything).Return(paymentResult(), nil)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/export/review_by_payment?format=XLSX")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, exporter.FormatXLSX.ContentType(), resp.Header.Get("Content-Type"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(raw) > 4 && string(raw[:2]) == "PK", "xlsx is a zip archive")
}

func TestDashboardHandler_Export_BadFormat(t *testing.T) {
	svc := new(mockDashboardService)
	srv := newTestServer(t, svc)

	resp, err := http.Get(srv.URL + "/export/review_by_payment?format=pdf")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	classifierdomain "github.com/retailops/quantclass/internal/classifier/domain"
	"github.com/retailops/quantclass/internal/features"
	predictdomain "github.com/retailops/quantclass/internal/predict/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPredictService struct {
	ready bool
	resp  *predictdomain.PredictResponse
	err   error
}

func (s *stubPredictService) Predict(ctx context.Context, req predictdomain.PredictRequest) (*predictdomain.PredictResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

func (s *stubPredictService) Ready() bool {
	return s.ready
}

func newTestServer(t *testing.T, svc predictdomain.Service) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())

	srv := &Server{engine: engine, predictSvc: svc}
	srv.registerRoutes()

	return engine
}

func doPredict(t *testing.T, engine *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/predict", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func validBody() map[string]any {
	return map[string]any{
		"Date":          "2023-06-17",
		"BranchID":      "B001",
		"InvoiceNumber": "INV-1001",
		"ItemCode":      "ITEM-500",
		"QuantitySold":  12.5,
	}
}

func TestPredictEndpoint(t *testing.T) {
	svc := &stubPredictService{
		ready: true,
		resp: &predictdomain.PredictResponse{
			Prediction:    "MEDIUM",
			ClassID:       1,
			Probabilities: []float64{0.2, 0.5, 0.3},
			History:       "none",
		},
	}
	engine := newTestServer(t, svc)

	rec := doPredict(t, engine, validBody())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp predictdomain.PredictResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MEDIUM", resp.Prediction)
	assert.Equal(t, 1, resp.ClassID)
	assert.Equal(t, []float64{0.2, 0.5, 0.3}, resp.Probabilities)
	assert.Equal(t, "none", resp.History)
}

func TestPredictEndpointVersionedAlias(t *testing.T) {
	svc := &stubPredictService{
		ready: true,
		resp:  &predictdomain.PredictResponse{Prediction: "LOW", History: "none"},
	}
	engine := newTestServer(t, svc)

	payload, err := json.Marshal(validBody())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/predict", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPredictEndpointModelUnavailable(t *testing.T) {
	engine := newTestServer(t, &stubPredictService{err: classifierdomain.ErrModelUnavailable})

	rec := doPredict(t, engine, validBody())
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "service_unavailable")
}

func TestPredictEndpointMissingField(t *testing.T) {
	engine := newTestServer(t, &stubPredictService{ready: true})

	body := validBody()
	delete(body, "ItemCode")
	rec := doPredict(t, engine, body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestPredictEndpointBadDate(t *testing.T) {
	engine := newTestServer(t, &stubPredictService{err: features.ErrUnparseableDate})

	rec := doPredict(t, engine, validBody())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestPredictEndpointPredictionFailed(t *testing.T) {
	engine := newTestServer(t, &stubPredictService{err: predictdomain.ErrPredictionFailed})

	rec := doPredict(t, engine, validBody())
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "prediction_failed")
}

func TestHealthEndpoint(t *testing.T) {
	engine := newTestServer(t, &stubPredictService{ready: true})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"active"}`, rec.Body.String())
}

func TestHealthEndpointDegraded(t *testing.T) {
	engine := newTestServer(t, &stubPredictService{ready: false})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"inactive"}`, rec.Body.String())
}

package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ml-prediction-service/internal/adapters/secondary/filesystem"
	"ml-prediction-service/internal/adapters/secondary/native"
	"ml-prediction-service/internal/core/domain"
	"ml-prediction-service/internal/core/services"
	"ml-prediction-service/internal/testutil"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T, set *services.ModelSet, frontendPath string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc, err := services.NewPredictionService(set)
	require.NoError(t, err)

	r := gin.New()
	New(svc, frontendPath).RegisterRoutes(r)
	return r
}

// loadedRouter serves the on-disk fixture models through the native loader.
func loadedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	store, err := filesystem.New(testutil.WriteFixtureModels(t), ".json")
	require.NoError(t, err)

	set := services.NewModelLoaderService(store, nil, native.NewLoader()).Load(domain.DefaultModels)
	require.NoError(t, set.Err())
	return setupRouter(t, set, "")
}

// unloadedRouter simulates a service whose startup load failed.
func unloadedRouter(t *testing.T) *gin.Engine {
	t.Helper()
	set := services.NewModelSet(
		services.LoadResult{ID: domain.ModelDecisionTree, Path: "/m/decision_tree.json", Err: domain.ErrArtifactNotFound},
		services.LoadResult{ID: domain.ModelLogisticRegression, Path: "/m/logistic_regression.json", Err: domain.ErrArtifactNotFound},
	)
	return setupRouter(t, set, "")
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req, _ := http.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), "body: %s", w.Body.String())
	return resp
}

// ============================================================================
// GET /
// ============================================================================

func TestRoot_Loaded(t *testing.T) {
	r := loadedRouter(t)

	w := doJSON(r, "GET", "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "ML Prediction API is running", resp["message"])
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, true, resp["models_loaded"])
}

func TestRoot_NotLoadedStillHealthy(t *testing.T) {
	r := unloadedRouter(t)

	w := doJSON(r, "GET", "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, false, resp["models_loaded"])
}

func TestRoot_ServesFrontendToBrowsers(t *testing.T) {
	page := filepath.Join(t.TempDir(), "index.html")
	require.NoError(t, os.WriteFile(page, []byte("<h1>ML Prediction API</h1>"), 0o644))
	r := setupRouter(t, services.NewModelSet(), page)

	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,*/*;q=0.8")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<h1>ML Prediction API</h1>")

	// API clients still get JSON.
	w = doJSON(r, "GET", "/", nil)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestRoot_MissingFrontendFallsBackToJSON(t *testing.T) {
	r := setupRouter(t, services.NewModelSet(), filepath.Join(t.TempDir(), "index.html"))

	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decodeBody(t, w)["status"])
}

func TestHealthz(t *testing.T) {
	w := doJSON(loadedRouter(t), "GET", "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["models_loaded"])
}

// ============================================================================
// POST /predict
// ============================================================================

func TestPredict_Scenario(t *testing.T) {
	r := loadedRouter(t)

	w := doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1.0, 2.0, 3.0, 4.0}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"decision_tree": 1, "logistic_regression": 0}`, w.Body.String())
}

func TestPredict_ResponseShape(t *testing.T) {
	r := loadedRouter(t)

	vectors := [][]float64{
		{0, 0, 0, 0},
		{0.2, 0, 3.0, 0},
		{4, 0, 0, 0},
		{-1.5, 7.25, 2.5, 100},
	}
	for _, v := range vectors {
		w := doJSON(r, "POST", "/predict", map[string]interface{}{"data": v})
		require.Equal(t, http.StatusOK, w.Code)

		resp := decodeBody(t, w)
		assert.Len(t, resp, 2)
		for _, key := range []string{"decision_tree", "logistic_regression"} {
			val, ok := resp[key].(float64)
			require.True(t, ok, "field %q should be a number, got %T", key, resp[key])
			assert.Equal(t, float64(int(val)), val, "field %q should be an integer", key)
		}
	}
}

func TestPredict_Idempotent(t *testing.T) {
	r := loadedRouter(t)
	body := map[string]interface{}{"data": []float64{0.2, 0, 3.0, 0}}

	first := doJSON(r, "POST", "/predict", body)
	second := doJSON(r, "POST", "/predict", body)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
}

func TestPredict_ModelsNotLoaded(t *testing.T) {
	r := unloadedRouter(t)

	bodies := []interface{}{
		map[string]interface{}{"data": []float64{1.0, 2.0, 3.0, 4.0}},
		map[string]interface{}{"data": []float64{}},
		`not json`,
	}
	for _, body := range bodies {
		w := doJSON(r, "POST", "/predict", body)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.JSONEq(t, `{"detail": "Models not loaded"}`, w.Body.String())
	}
}

func TestPredict_WrongArity(t *testing.T) {
	r := loadedRouter(t)

	for _, n := range []int{0, 1, 1000} {
		w := doJSON(r, "POST", "/predict", map[string]interface{}{"data": make([]float64, n)})

		assert.Equal(t, http.StatusBadRequest, w.Code, "length %d", n)
		detail, _ := decodeBody(t, w)["detail"].(string)
		assert.NotEmpty(t, detail)
	}

	w := doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1, 2, 3}})
	assert.JSONEq(t, `{"detail": "feature count mismatch: expected 4 features, got 3"}`, w.Body.String())
}

func TestPredict_MalformedBody(t *testing.T) {
	r := loadedRouter(t)

	bodies := []string{
		`{}`,
		`{"data": null}`,
		`{"data": ["a", "b", "c", "d"]}`,
		`{"data": [1, 2, {"x": 3}, 4]}`,
		`{"data": 4}`,
		`{"data": [1, 2, 3, 4]`,
	}
	for _, body := range bodies {
		w := doJSON(r, "POST", "/predict", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Contains(t, w.Body.String(), `"detail"`)
	}
}

func TestPredict_TrailingDataRejected(t *testing.T) {
	r := loadedRouter(t)

	bodies := []string{
		`{"data": [1, 2, 3, 4]} garbage`,
		`{"data": [1, 2, 3, 4]}{"data": [1, 2, 3, 4]}`,
		`{"data": [1, 2, 3, 4]}}`,
	}
	for _, body := range bodies {
		w := doJSON(r, "POST", "/predict", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %s", body)
		assert.Contains(t, w.Body.String(), `"detail"`)
	}

	w := doJSON(r, "POST", "/predict", "{\"data\": [1, 2, 3, 4]}\n  ")
	assert.Equal(t, http.StatusOK, w.Code)
}

// bothModels builds a complete set from mocks so a single failure mode can be
// injected per test.
func bothModels(dt, lr *testutil.MockClassifier) *services.ModelSet {
	return services.NewModelSet(
		services.LoadResult{ID: domain.ModelDecisionTree, Classifier: dt},
		services.LoadResult{ID: domain.ModelLogisticRegression, Classifier: lr},
	)
}

func TestPredict_InternalError(t *testing.T) {
	dt := new(testutil.MockClassifier)
	dt.On("NumFeatures").Return(4)
	dt.On("Predict", mock.Anything).Return(0, errors.New("tensor allocation failed"))
	lr := new(testutil.MockClassifier)
	lr.On("NumFeatures").Return(4)
	lr.On("Predict", mock.Anything).Return(0, nil).Maybe()

	r := setupRouter(t, bothModels(dt, lr), "")

	w := doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1, 2, 3, 4}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "internal server error"}`, w.Body.String())
}

func TestPredict_InternalErrorLoggedOnce(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	dt := new(testutil.MockClassifier)
	dt.On("NumFeatures").Return(4)
	dt.On("Predict", mock.Anything).Return(0, errors.New("tensor allocation failed"))
	lr := new(testutil.MockClassifier)
	lr.On("NumFeatures").Return(4)
	lr.On("Predict", mock.Anything).Return(0, nil).Maybe()
	r := setupRouter(t, bothModels(dt, lr), "")

	hook.Reset()
	doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1, 2, 3, 4}})

	var warnOrWorse []*log.Entry
	for _, e := range hook.AllEntries() {
		if e.Level <= log.WarnLevel {
			warnOrWorse = append(warnOrWorse, e)
		}
	}
	require.Len(t, warnOrWorse, 1)
	assert.Equal(t, log.ErrorLevel, warnOrWorse[0].Level)

	// Validation failures stay out of the warning stream.
	hook.Reset()
	doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1, 2, 3}})
	for _, e := range hook.AllEntries() {
		assert.Greater(t, e.Level, log.WarnLevel, e.Message)
	}
}

func TestPredict_PartialModelSetNotLoaded(t *testing.T) {
	dt := new(testutil.MockClassifier)
	dt.On("NumFeatures").Return(4)

	r := setupRouter(t, services.NewModelSet(services.LoadResult{ID: domain.ModelDecisionTree, Classifier: dt}), "")

	w := doJSON(r, "GET", "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["models_loaded"])

	w = doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1, 2, 3, 4}})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"detail": "Models not loaded"}`, w.Body.String())
	dt.AssertNotCalled(t, "Predict", mock.Anything)
}

// ============================================================================
// GET /models, GET /metrics
// ============================================================================

func TestListModels(t *testing.T) {
	r := loadedRouter(t)

	w := doJSON(r, "GET", "/models", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Items []struct {
			ID        string `json:"id"`
			Loaded    bool   `json:"loaded"`
			Exists    bool   `json:"exists"`
			Kind      string `json:"kind"`
			NFeatures int    `json:"n_features"`
		} `json:"items"`
		FeatureCount int `json:"feature_count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 4, resp.FeatureCount)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "decision_tree", resp.Items[0].ID)
	assert.Equal(t, "logistic_regression", resp.Items[1].ID)
	for _, item := range resp.Items {
		assert.True(t, item.Loaded)
		assert.True(t, item.Exists)
		assert.Equal(t, item.ID, item.Kind)
		assert.Equal(t, 4, item.NFeatures)
	}
}

func TestListModels_ReportsLoadErrors(t *testing.T) {
	w := doJSON(unloadedRouter(t), "GET", "/models", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "model artifact not found")
}

func TestMetricsEndpoint(t *testing.T) {
	r := loadedRouter(t)
	doJSON(r, "POST", "/predict", map[string]interface{}{"data": []float64{1, 2, 3, 4}})

	w := doJSON(r, "GET", "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "model_predictions_total"))
}

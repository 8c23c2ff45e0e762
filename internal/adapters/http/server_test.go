package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	httpAdapter "github.com/nmbl-labs/formpath/internal/adapters/http"
	"github.com/nmbl-labs/formpath/internal/logging"
	"github.com/nmbl-labs/formpath/pkg/domain"
	"github.com/nmbl-labs/formpath/pkg/schema"
)

func testHandler(t *testing.T) http.Handler {
	t.Helper()
	def, err := domain.NewFlow("signup", "account", map[domain.StepID]domain.StepDefinition{
		"account": {
			Schema: schema.Schema{"email": schema.String()},
			Next:   domain.Goto("review"),
		},
		"review": {
			Schema: schema.Schema{"confirm": schema.Bool()},
			Next:   domain.End(),
		},
	})
	if err != nil {
		t.Fatalf("fixture definition invalid: %v", err)
	}
	return httpAdapter.NewHandler([]*domain.FlowDefinition{def}, logging.NewNop())
}

func postJSON(t *testing.T, handler http.Handler, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	assert.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

type navigateResponse struct {
	State       *domain.FlowState `json:"state"`
	Moved       bool              `json:"moved"`
	FieldErrors []string          `json:"fieldErrors"`
}

func TestServer_ListFlows(t *testing.T) {
	handler := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/flows", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"signup"}, body["flows"])
}

func TestServer_UnknownFlow(t *testing.T) {
	handler := testHandler(t)
	rec := postJSON(t, handler, "/flows/ghost/path", map[string]any{})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Path(t *testing.T) {
	handler := testHandler(t)
	rec := postJSON(t, handler, "/flows/signup/path", map[string]any{
		"data": map[string]any{"account": map[string]any{"email": "a@b.c"}},
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Path []domain.StepID `json:"path"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []domain.StepID{"account", "review"}, body.Path)
}

func TestServer_NextDrivesStatelessNavigation(t *testing.T) {
	handler := testHandler(t)

	// First request: no state means a fresh flow at the initial step.
	rec := postJSON(t, handler, "/flows/signup/next", map[string]any{
		"input": map[string]any{"email": "a@b.c"},
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var first navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.True(t, first.Moved)
	assert.Equal(t, domain.StepID("review"), first.State.CurrentStep)

	// Second request resumes from the returned state.
	rec = postJSON(t, handler, "/flows/signup/next", map[string]any{
		"state": first.State,
		"input": map[string]any{"confirm": true},
	})
	var second navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	assert.True(t, second.Moved)
	assert.True(t, second.State.IsComplete())
}

func TestServer_NextValidationFailure(t *testing.T) {
	handler := testHandler(t)
	rec := postJSON(t, handler, "/flows/signup/next", map[string]any{
		"input": map[string]any{"email": 42},
	})
	assert.Equal(t, http.StatusOK, rec.Code, "invalid input is a domain outcome, not an HTTP error")

	var body navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Moved)
	assert.Equal(t, domain.StatusError, body.State.Status)
	assert.NotEmpty(t, body.FieldErrors)
}

func TestServer_BackAndGoTo(t *testing.T) {
	handler := testHandler(t)

	rec := postJSON(t, handler, "/flows/signup/next", map[string]any{
		"input": map[string]any{"email": "a@b.c"},
	})
	var advanced navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &advanced))

	rec = postJSON(t, handler, "/flows/signup/back", map[string]any{"state": advanced.State})
	var back navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &back))
	assert.True(t, back.Moved)
	assert.Equal(t, domain.StepID("account"), back.State.CurrentStep)

	rec = postJSON(t, handler, "/flows/signup/goto", map[string]any{
		"state":  back.State,
		"target": "review",
	})
	var jumped navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &jumped))
	assert.True(t, jumped.Moved)
	assert.Equal(t, domain.StepID("review"), jumped.State.CurrentStep)
}

func TestServer_Reset(t *testing.T) {
	handler := testHandler(t)
	rec := postJSON(t, handler, "/flows/signup/reset", map[string]any{
		"initialData": map[string]any{"account": map[string]any{"email": "a@b.c"}},
	})

	var body navigateResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.StepID("account"), body.State.CurrentStep)
	assert.Equal(t, []domain.StepID{"account", "review"}, body.State.Path)
	assert.Empty(t, body.State.CompletedSteps)
}

func TestServer_Graph(t *testing.T) {
	handler := testHandler(t)
	req := httptest.NewRequest(http.MethodGet, "/flows/signup/graph", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), "graph TD"))
	assert.Contains(t, rec.Body.String(), "account --> review")
}

func TestServer_InvalidBody(t *testing.T) {
	handler := testHandler(t)
	req := httptest.NewRequest(http.MethodPost, "/flows/signup/next", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/agrilink/idgate/internal/pkg/config"
	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/agrilink/idgate/internal/pkg/router"
	"github.com/agrilink/idgate/internal/pkg/uid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubConfig overrides only what the middleware chain reads; any other
// method call would panic on the embedded nil interface.
type stubConfig struct{ config.Config }

func (stubConfig) GetArray(string) []string { return nil }

func newTestRouter() *router.Router {
	return router.NewRouter(router.Config{
		Config:     stubConfig{},
		UUID:       uid.NewUUID(),
		Instrument: instrument.NewNoop(),
	})
}

func doRequest(t *testing.T, r *router.Router, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return rec, envelope
}

func TestRouterSuccessEnvelope(t *testing.T) {
	r := newTestRouter()
	r.POST("/echo", func(req *router.Request) (any, error) {
		return map[string]string{"phone": "+918085745154"}, nil
	})

	rec, envelope := doRequest(t, r, http.MethodPost, "/echo", `{}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
	assert.NotEmpty(t, envelope["message"])

	data, ok := envelope["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "+918085745154", data["phone"])
}

func TestRouterErrorEnvelope(t *testing.T) {
	r := newTestRouter()
	r.POST("/fail", func(req *router.Request) (any, error) {
		return nil, goerror.NewBusiness("Account not found", goerror.CodeNotFound)
	})

	rec, envelope := doRequest(t, r, http.MethodPost, "/fail", `{}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, envelope["success"])
	assert.Equal(t, "Account not found", envelope["message"])
}

func TestRouterNotFoundEnvelope(t *testing.T) {
	r := newTestRouter()

	rec, envelope := doRequest(t, r, http.MethodPost, "/nowhere", ``)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, envelope["success"])
	assert.NotEmpty(t, envelope["message"])
}

func TestRouterHealthEnvelope(t *testing.T) {
	r := newTestRouter()

	rec, envelope := doRequest(t, r, http.MethodGet, "/health", ``)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, envelope["success"])
}

package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbruna/espalier"
	"github.com/mbruna/espalier/pkg/adapters/httpapi"
	"github.com/mbruna/espalier/pkg/controls"
)

type managerFunc func() (controls.Control, error)

func (f managerFunc) CreateControlTree() (controls.Control, error) { return f() }

func newTestHandler(t *testing.T) (http.Handler, *espalier.Engine) {
	t.Helper()
	manager := managerFunc(func() (controls.Control, error) {
		pet, err := controls.NewValueControl(controls.Props{ID: "pet", Required: true})
		if err != nil {
			return nil, err
		}
		return controls.NewContainer("root", pet), nil
	})
	engine, err := espalier.New(manager)
	require.NoError(t, err)
	return httpapi.NewHandler(engine, nil), engine
}

func postTurn(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/turn", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestServer_TurnMintsSessionID(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postTurn(t, handler, `{"input":{"kind":"intent","intent":"PetIntent","slots":{"action":{"name":"action","value":"set"},"pet":{"name":"pet","value":"cat"}}}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpapi.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.SessionID)
	require.NotNil(t, body.Response)
	assert.Equal(t, []string{"OK, cat."}, body.Response.Prompt)
	assert.True(t, body.Response.EndSession)
}

func TestServer_TurnKeepsProvidedSessionID(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postTurn(t, handler, `{"session_id":"abc","input":{"kind":"launch"}}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body httpapi.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "abc", body.SessionID)
}

func TestServer_TurnRequiresKind(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := postTurn(t, handler, `{"input":{}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postTurn(t, handler, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ListSessions(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"sessions":[]}`, rec.Body.String())

	postTurn(t, handler, `{"session_id":"abc","input":{"kind":"launch"}}`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sessions", nil))
	assert.JSONEq(t, `{"sessions":["abc"]}`, rec.Body.String())
}

func TestServer_DeleteSession(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	postTurn(t, handler, `{"session_id":"abc","input":{"kind":"launch"}}`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/sessions/abc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestServer_Health(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, espalier.Version, body["version"])
}

func TestServer_CORSPreflight(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/turn", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainconfig "github.com/haydenbleasel/tersa-sub001/domain/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/config"
	"github.com/haydenbleasel/tersa-sub001/infrastructure/di"
	"github.com/haydenbleasel/tersa-sub001/interfaces/http/rest"
	"github.com/haydenbleasel/tersa-sub001/interfaces/http/rest/middleware"
	pkgauth "github.com/haydenbleasel/tersa-sub001/pkg/auth"
)

const testSecret = "router-test-signing-secret-0123456789"

type apiClient struct {
	t       *testing.T
	handler http.Handler
	tokens  map[string]string
}

func newAPI(t *testing.T, opts rest.Options) *apiClient {
	t.Helper()
	cfg := &config.Config{
		Environment:         "test",
		LogLevel:            "error",
		DatabaseDriver:      "memory",
		StorageBackend:      "inline",
		EntitlementsBackend: "static",
		StaticSubscribed:    true,
		GenerationRate:      100,
		GenerationBurst:     100,
		AWSRegion:           "us-east-1",
		SupabaseJWTSecret:   testSecret,
		Domain:              domainconfig.DefaultDomainConfig(),
	}
	c, cleanup, err := di.InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(cleanup)

	router := rest.NewRouter(c.CommandBus, c.QueryBus, c.TokenVerifier, c.Metrics, c.ErrorHandler, c.Logger, opts)

	gen, err := pkgauth.NewJWTGenerator(testSecret, "", nil, time.Hour)
	require.NoError(t, err)
	tokens := map[string]string{}
	for _, user := range []string{"alice", "mallory"} {
		tok, err := gen.GenerateToken(user, user+"@example.com")
		require.NoError(t, err)
		tokens[user] = tok
	}
	return &apiClient{t: t, handler: router.Setup(), tokens: tokens}
}

func (c *apiClient) do(user, method, path string, body interface{}) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if tok, ok := c.tokens[user]; ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	c.handler.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestRouter_PublicEndpoints(t *testing.T) {
	api := newAPI(t, rest.Options{Version: "test"})

	tests := []struct {
		path     string
		contains string
	}{
		{"/health", `"status":"healthy"`},
		{"/swagger/doc.json", "Canvas API"},
		{"/swagger/doc.json", "Its data is reset to the new type's default shape"},
		{"/metrics", "go_goroutines"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := api.do("", http.MethodGet, tt.path, nil)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.contains)
		})
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	api := newAPI(t, rest.Options{})

	rec := api.do("", http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decode(t, rec)["type"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	api.tokens["forged"] = "not-a-jwt"
	rec = api.do("forged", http.MethodGet, "/api/v1/projects", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_GatewayHeaders(t *testing.T) {
	tests := []struct {
		name  string
		trust bool
		want  int
	}{
		{"trusted", true, http.StatusOK},
		{"ignored", false, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newAPI(t, rest.Options{TrustGatewayHeaders: tt.trust})
			req := httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil)
			req.Header.Set(middleware.GatewayUserHeader, "alice")
			rec := httptest.NewRecorder()
			api.handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_ProjectLifecycle(t *testing.T) {
	api := newAPI(t, rest.Options{})

	rec := api.do("alice", http.MethodPost, "/api/v1/projects", map[string]string{"name": "Storyboard"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	project := decode(t, rec)
	id := project["id"].(string)
	assert.Equal(t, "Storyboard", project["name"])
	base := "/api/v1/projects/" + id

	rec = api.do("alice", http.MethodGet, "/api/v1/projects", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = api.do("alice", http.MethodPatch, base, map[string]string{"name": "Renamed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Renamed", decode(t, rec)["name"])

	rec = api.do("mallory", http.MethodGet, base, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do("alice", http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do("alice", http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_CanvasEditsAndGeneration(t *testing.T) {
	api := newAPI(t, rest.Options{})

	rec := api.do("alice", http.MethodPost, "/api/v1/projects", map[string]string{"name": "Canvas"})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/projects/" + decode(t, rec)["id"].(string)

	rec = api.do("alice", http.MethodPost, base+"/nodes", map[string]interface{}{
		"id":       "prompt",
		"type":     "text",
		"position": map[string]float64{"x": 0, "y": 0},
		"data":     map[string]string{"text": "a lighthouse at dusk"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do("alice", http.MethodPost, base+"/nodes", map[string]interface{}{
		"id":       "writer",
		"type":     "text",
		"position": map[string]float64{"x": 300, "y": 0},
		"data":     map[string]string{"instructions": "Write a haiku"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do("alice", http.MethodPost, base+"/nodes", map[string]interface{}{"type": "spreadsheet"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do("alice", http.MethodPut, base+"/nodes/writer/position", map[string]float64{"x": 320, "y": 40})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.EqualValues(t, 320, decode(t, rec)["position"].(map[string]interface{})["x"])

	rec = api.do("alice", http.MethodPost, base+"/edges", map[string]string{"id": "e1", "source": "prompt", "target": "writer"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = api.do("alice", http.MethodPost, base+"/edges", map[string]string{"source": "prompt", "target": "ghost"})
	assert.GreaterOrEqual(t, rec.Code, http.StatusBadRequest)

	rec = api.do("alice", http.MethodPost, base+"/nodes/writer/generate", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode(t, rec)
	assert.Equal(t, "echo", result["model"])
	text := result["generation"].(map[string]interface{})["text"].(string)
	assert.Contains(t, text, "Write a haiku")
	assert.Contains(t, text, "a lighthouse at dusk")

	rec = api.do("alice", http.MethodPost, base+"/generate", map[string]interface{}{
		"items": []map[string]string{{"nodeId": "writer"}, {"nodeId": "ghost"}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	batch := decode(t, rec)
	assert.EqualValues(t, 1, batch["succeeded"])
	assert.EqualValues(t, 1, batch["failed"])
	failed := batch["results"].([]interface{})[1].(map[string]interface{})
	assert.Equal(t, "ghost", failed["nodeId"])
	assert.Equal(t, "NOT_FOUND", failed["error"].(map[string]interface{})["type"])

	rec = api.do("alice", http.MethodDelete, base+"/edges/e1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do("alice", http.MethodDelete, base+"/nodes/prompt", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do("alice", http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	content := decode(t, rec)["content"].(map[string]interface{})
	assert.Len(t, content["nodes"], 1)
	assert.Len(t, content["edges"], 0)
}

func TestRouter_SaveContentRejectsInvalidDocument(t *testing.T) {
	api := newAPI(t, rest.Options{})

	rec := api.do("alice", http.MethodPost, "/api/v1/projects", map[string]string{})
	require.Equal(t, http.StatusCreated, rec.Code)
	base := "/api/v1/projects/" + decode(t, rec)["id"].(string)

	rec = api.do("alice", http.MethodPut, base+"/content", map[string]interface{}{
		"content": map[string]interface{}{
			"nodes": []interface{}{},
			"edges": []map[string]string{{"id": "e", "source": "a", "target": "b"}},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = api.do("alice", http.MethodPut, base+"/content", map[string]interface{}{
		"content": map[string]interface{}{
			"nodes": []map[string]interface{}{
				{"id": "a", "type": "text", "position": map[string]float64{"x": 1, "y": 2}, "data": map[string]string{"text": "hi"}},
			},
			"edges": []interface{}{},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Len(t, decode(t, rec)["content"].(map[string]interface{})["nodes"], 1)
}

func TestRouter_ListModels(t *testing.T) {
	api := newAPI(t, rest.Options{})

	rec := api.do("alice", http.MethodGet, "/api/v1/models?capability=text", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	models := decode(t, rec)["models"].([]interface{})
	require.NotEmpty(t, models)
	assert.Equal(t, "echo", models[0].(map[string]interface{})["id"])

	rec = api.do("alice", http.MethodGet, "/api/v1/models?capability=smell", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package ellie

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ellietransfer/pkg/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.EllieConfig{Organization: srv.URL, Token: "secret"})
}

func TestCreateModel(t *testing.T) {
	var got modelEnvelope
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/models", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 123}`))
	})

	id, err := c.CreateModel(context.Background(), &Model{Name: "Webshop", Level: LevelPhysical})
	require.NoError(t, err)
	assert.Equal(t, "123", id)
	require.NotNil(t, got.Model)
	assert.Equal(t, "Webshop", got.Model.Name)
}

func TestGetModel(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/models/42", r.URL.Path)
		w.Write([]byte(`{"model":{"name":"Webshop","entities":[{"id":"e1","name":"CUSTOMER","attributes":[]}],"relationships":[]}}`))
	})

	m, err := c.GetModel(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "Webshop", m.Name)
	require.Len(t, m.Entities, 1)
	assert.Equal(t, "CUSTOMER", m.Entities[0].Name)
}

func TestUpdateModel(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/models/42", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})

	err := c.UpdateModel(context.Background(), "42", &Model{Name: "Webshop"})
	require.NoError(t, err)
}

func TestAPIError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid token"}`))
	})

	_, err := c.GetModel(context.Background(), "42")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid token", apiErr.Message)
}

func TestAPIErrorPlainBody(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := c.GetModel(context.Background(), "42")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "upstream down", apiErr.Message)
}

func TestNewClientNormalizesOrganization(t *testing.T) {
	c := NewClient(config.EllieConfig{Organization: "acme.ellie.ai"})
	assert.Equal(t, "https://acme.ellie.ai/models/physical/9", c.ModelURL("", "9"))

	c = NewClient(config.EllieConfig{Organization: "http://acme.internal/"})
	assert.Equal(t, "http://acme.internal/models/logical/9", c.ModelURL(LevelLogical, "9"))
}

func TestImportResultRef(t *testing.T) {
	var res ImportResult
	require.NoError(t, json.Unmarshal([]byte(`{"id":"abc-1"}`), &res))
	assert.Equal(t, "abc-1", res.Ref())

	res = ImportResult{}
	require.NoError(t, json.Unmarshal([]byte(`{"modelId":7}`), &res))
	assert.Equal(t, "7", res.Ref())
}

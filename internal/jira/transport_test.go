package jira

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/jiradesk/internal/config"
)

func TestGatewaySendsCredentialsAndHeaders(t *testing.T) {
	var (
		user, pass  string
		authOK      bool
		accept      string
		contentType string
	)
	mux := http.NewServeMux()
	mux.HandleFunc("POST /rest/api/3/search/jql", func(w http.ResponseWriter, r *http.Request) {
		user, pass, authOK = r.BasicAuth()
		accept = r.Header.Get("Accept")
		contentType = r.Header.Get("Content-Type")
		writeJSON(t, w, http.StatusOK, map[string]any{"issues": []any{}})
	})
	client, rec := newTestClient(t, mux)

	var out searchResponse
	err := client.gateway.Do(context.Background(), opMyTickets, http.MethodPost, platformPath("/search/jql"), nil, searchRequest{JQL: "x"}, &out)
	require.NoError(t, err)

	assert.True(t, authOK)
	assert.Equal(t, testUser, user)
	assert.Equal(t, testToken, pass)
	assert.Equal(t, "application/json", accept)
	assert.Equal(t, "application/json", contentType)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "x", decodeBody(t, reqs[0].Body)["jql"])
}

func TestGatewayClassifiesResponses(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantAuth   bool
		wantErr    bool
		wantStatus int
	}{
		{name: "ok", status: http.StatusOK, body: `[]`},
		{name: "no content", status: http.StatusNoContent},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{}`, wantAuth: true, wantErr: true, wantStatus: 401},
		{name: "forbidden", status: http.StatusForbidden, body: `{}`, wantAuth: true, wantErr: true, wantStatus: 403},
		{name: "not found", status: http.StatusNotFound, body: `{"errorMessages":["Issue does not exist"]}`, wantErr: true, wantStatus: 404},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: true, wantStatus: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /rest/api/3/field", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			client, _ := newTestClient(t, mux)

			_, err := client.gateway.Send(context.Background(), opLoadFields, http.MethodGet, platformPath("/field"), nil, nil)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantAuth, IsAuth(err))
			if tt.wantAuth {
				var authErr *AuthError
				require.True(t, errors.As(err, &authErr))
				assert.Equal(t, tt.wantStatus, authErr.StatusCode)
				assert.Equal(t, "Jira authentication failed while loading field metadata. Please configure your API token.", err.Error())
				return
			}

			var opErr *OperationError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, tt.wantStatus, opErr.StatusCode)
			assert.Contains(t, err.Error(), "Load field metadata failed")
		})
	}
}

func TestGatewayMalformedJSON(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /rest/api/3/field", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{"not":"an array"}`)
	})
	client, _ := newTestClient(t, mux)

	var catalog []map[string]any
	err := client.gateway.Do(context.Background(), opLoadFields, http.MethodGet, platformPath("/field"), nil, nil, &catalog)
	require.Error(t, err)
	assert.False(t, IsAuth(err))
	assert.Contains(t, err.Error(), "unexpected JSON")
}

func TestGatewayNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	gateway, err := NewGateway(config.JiraConfig{URL: url, Username: testUser, Token: testToken})
	require.NoError(t, err)

	_, err = gateway.Send(context.Background(), opMyTickets, http.MethodGet, platformPath("/myself"), nil, nil)
	require.Error(t, err)
	assert.False(t, IsAuth(err))

	var opErr *OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Zero(t, opErr.StatusCode)
}

func TestGatewayEscapesPathSegments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, http.StatusOK, `{}`)
	})
	client, rec := newTestClient(t, mux)

	_, err := client.gateway.Send(context.Background(), opFieldSnapshot, http.MethodGet, platformPath("/issue/%s", segment("ABC 1/2")), nil, nil)
	require.NoError(t, err)

	reqs := rec.all()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/rest/api/3/issue/ABC%201%2F2", reqs[0].Path)
}

func TestNewGatewayRequiresURL(t *testing.T) {
	_, err := NewGateway(config.JiraConfig{Username: testUser, Token: testToken})
	assert.Error(t, err)
}

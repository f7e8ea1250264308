package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAskSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Zeig mir alle Kunden", body["query"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"query":        "SELECT * FROM customers",
			"results_html": "<tr><td>id</td></tr>",
		})
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL+"/ask", time.Second).Ask(context.Background(), "Zeig mir alle Kunden")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM customers", resp.Query)
	assert.Equal(t, "<tr><td>id</td></tr>", resp.ResultsHTML)
}

func TestClientAskServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"detail":"Generated query is unsafe: DROP TABLE sales"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Ask(context.Background(), "lösche alles")
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusBadRequest, be.Status)
	assert.Equal(t, "Generated query is unsafe: DROP TABLE sales", be.Detail)
}

func TestClientAskValidationDetailList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"msg":"field required"},{"msg":"too short"}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Ask(context.Background(), "x")
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, "field required; too short", be.Detail)
}

func TestClientAskErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Ask(context.Background(), "x")
	var be *Error
	require.True(t, errors.As(err, &be))
	assert.Equal(t, http.StatusInternalServerError, be.Status)
	assert.Empty(t, be.Detail)
}

func TestClientAskUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url, time.Second).Ask(context.Background(), "x")
	assert.ErrorIs(t, err, ErrUnavailable)
}

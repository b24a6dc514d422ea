package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAccountID = "7f1c2a4e-9b3d-4c55-8e21-0a6b9d3f5c10"

func TestSupabaseAdminClientListAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/admin/users", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "200", r.URL.Query().Get("per_page"))
		assert.Equal(t, "service-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer service-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"users":[{"id":"` + testAccountID + `","email":"a@example.com","role":"authenticated"}],"aud":"authenticated"}`))
	}))
	defer server.Close()

	client := NewSupabaseAdminClient(server.URL+"/", "service-key", time.Second)
	accounts, err := client.ListAccounts(context.Background(), 2, 200)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, testAccountID, accounts[0].ID)
	assert.Equal(t, "a@example.com", accounts[0].Email)
}

func TestSupabaseAdminClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"msg":"invalid JWT"}`, http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewSupabaseAdminClient(server.URL, "bad", time.Second).ListAccounts(context.Background(), 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewSupabaseAdminClient("", "key", time.Second).ListAccounts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrDirectoryNotConfigured)

	_, err = NewSupabaseAdminClient(server.URL, "", time.Second).ListAccounts(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrDirectoryNotConfigured)
}

func TestSupabaseAdminClientHonorsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		_, _ = w.Write([]byte(`{"users":[]}`))
	}))
	defer server.Close()
	defer close(release)

	client := NewSupabaseAdminClient(server.URL, "service-key", 5*time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := client.ListAccounts(ctx, 1, 10)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	_, err = client.ListAccounts(cancelled, 1, 10)
	assert.ErrorIs(t, err, context.Canceled)
}

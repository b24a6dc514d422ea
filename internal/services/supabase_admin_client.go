package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"financial-mirror/internal/models"

	auth "github.com/supabase-community/auth-go"
	"github.com/supabase-community/auth-go/types"
)

// SupabaseAdminClient lists accounts through the Supabase auth admin API.
type SupabaseAdminClient struct {
	client     auth.Client
	configured bool
}

// NewSupabaseAdminClient builds a client for the project at baseURL. Missing
// credentials are reported by ListAccounts, not here, so the server can start
// without them.
func NewSupabaseAdminClient(baseURL, serviceKey string, timeout time.Duration) *SupabaseAdminClient {
	authURL := strings.TrimRight(baseURL, "/") + "/auth/v1"

	client := auth.New("", serviceKey).
		WithCustomAuthURL(authURL).
		WithToken(serviceKey).
		WithClient(http.Client{Timeout: timeout})

	return &SupabaseAdminClient{
		client:     client,
		configured: baseURL != "" && serviceKey != "",
	}
}

type listUsersResult struct {
	resp *types.AdminListUsersResponse
	err  error
}

// ListAccounts fetches one page of accounts. Pages start at 1. The SDK call
// takes no context, so ctx only bounds how long we wait for it; the HTTP
// client timeout bounds the request itself.
func (c *SupabaseAdminClient) ListAccounts(ctx context.Context, page, perPage int) ([]models.Account, error) {
	if !c.configured {
		return nil, ErrDirectoryNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan listUsersResult, 1)
	go func() {
		resp, err := c.client.AdminListUsers(types.AdminListUsersRequest{
			Page:    &page,
			PerPage: &perPage,
		})
		done <- listUsersResult{resp: resp, err: err}
	}()

	var result listUsersResult
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result = <-done:
	}

	if result.err != nil {
		return nil, fmt.Errorf("failed to list identity accounts: %w", result.err)
	}

	accounts := make([]models.Account, 0, len(result.resp.Users))
	for _, user := range result.resp.Users {
		accounts = append(accounts, models.Account{
			ID:    user.ID.String(),
			Email: user.Email,
		})
	}
	return accounts, nil
}

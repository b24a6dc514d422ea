package services

import (
	"context"
	"fmt"
	"time"

	"financial-mirror/internal/metrics"
	"financial-mirror/internal/models"
	"financial-mirror/pkg/logging"
)

const (
	defaultDirectoryPageSize = 200
	defaultDirectoryMaxPages = 20
	defaultDirectoryTimeout  = 10 * time.Second
)

// AccountLister pages through the identity service's accounts.
type AccountLister interface {
	ListAccounts(ctx context.Context, page, perPage int) ([]models.Account, error)
}

// AccountCache remembers positive email to account resolutions.
type AccountCache interface {
	GetAccountID(ctx context.Context, email string) (string, bool, error)
	SetAccountID(ctx context.Context, email, accountID string) error
}

// UserDirectoryOptions bounds the directory scan. Zero values take defaults.
type UserDirectoryOptions struct {
	PageSize int
	MaxPages int
	Timeout  time.Duration
	Cache    AccountCache
}

// UserDirectory resolves a buyer email to an account id.
type UserDirectory struct {
	lister   AccountLister
	cache    AccountCache
	pageSize int
	maxPages int
	timeout  time.Duration
}

func NewUserDirectory(lister AccountLister, opts UserDirectoryOptions) *UserDirectory {
	d := &UserDirectory{
		lister:   lister,
		cache:    opts.Cache,
		pageSize: opts.PageSize,
		maxPages: opts.MaxPages,
		timeout:  opts.Timeout,
	}
	if d.pageSize <= 0 {
		d.pageSize = defaultDirectoryPageSize
	}
	if d.maxPages <= 0 {
		d.maxPages = defaultDirectoryMaxPages
	}
	if d.timeout <= 0 {
		d.timeout = defaultDirectoryTimeout
	}
	return d
}

// ResolveAccountIDByEmail scans at most maxPages pages, comparing emails
// case-insensitively, and stops at the first short page. Not found is
// (false, nil); only transport and configuration problems are errors.
func (d *UserDirectory) ResolveAccountIDByEmail(ctx context.Context, email string) (string, bool, error) {
	target := models.NormalizeEmail(email)
	if target == "" {
		return "", false, nil
	}
	if d.lister == nil {
		return "", false, ErrDirectoryNotConfigured
	}

	if d.cache != nil {
		id, ok, err := d.cache.GetAccountID(ctx, target)
		if err != nil {
			logging.Warnf("Account cache read failed for %s: %v", target, err)
		} else if ok {
			metrics.DirectoryLookupsTotal.WithLabelValues("cache_hit").Inc()
			return id, true, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	for page := 1; page <= d.maxPages; page++ {
		if err := ctx.Err(); err != nil {
			metrics.DirectoryLookupsTotal.WithLabelValues("error").Inc()
			return "", false, fmt.Errorf("account lookup stopped before page %d: %w", page, err)
		}

		accounts, err := d.lister.ListAccounts(ctx, page, d.pageSize)
		if err != nil {
			metrics.DirectoryLookupsTotal.WithLabelValues("error").Inc()
			return "", false, fmt.Errorf("failed to list accounts (page %d): %w", page, err)
		}

		for _, account := range accounts {
			if account.ID != "" && models.NormalizeEmail(account.Email) == target {
				d.remember(ctx, target, account.ID)
				metrics.DirectoryLookupsTotal.WithLabelValues("hit").Inc()
				return account.ID, true, nil
			}
		}

		if len(accounts) < d.pageSize {
			break
		}
	}

	metrics.DirectoryLookupsTotal.WithLabelValues("miss").Inc()
	return "", false, nil
}

func (d *UserDirectory) remember(ctx context.Context, email, accountID string) {
	if d.cache == nil {
		return
	}
	if err := d.cache.SetAccountID(ctx, email, accountID); err != nil {
		logging.Warnf("Account cache write failed for %s: %v", email, err)
	}
}

// Package auth adapts Supabase to the entitlement and token ports.
package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"
	"go.uber.org/zap"

	"github.com/haydenbleasel/tersa-sub001/application/ports"
)

// ProfileSource runs a query against a Supabase table.
type ProfileSource interface {
	From(table string) *postgrest.QueryBuilder
}

type profileRow struct {
	ID             string  `json:"id"`
	SubscriptionID *string `json:"subscription_id"`
}

// SupabaseEntitlements treats a user as subscribed when their profile row
// carries a subscription id. Answers are cached for ttl.
type SupabaseEntitlements struct {
	source ProfileSource
	table  string
	ttl    time.Duration
	logger *zap.Logger

	mu    sync.Mutex
	cache map[string]cachedEntitlement
	now   func() time.Time
}

type cachedEntitlement struct {
	subscribed bool
	expires    time.Time
}

var _ ports.Entitlements = (*SupabaseEntitlements)(nil)

// NewSupabaseEntitlements creates an entitlement lookup on the profile table.
func NewSupabaseEntitlements(source ProfileSource, table string, ttl time.Duration, logger *zap.Logger) *SupabaseEntitlements {
	if table == "" {
		table = "profile"
	}
	return &SupabaseEntitlements{
		source: source,
		table:  table,
		ttl:    ttl,
		logger: logger,
		cache:  make(map[string]cachedEntitlement),
		now:    time.Now,
	}
}

// IsSubscribed reports whether userID has an active subscription.
func (e *SupabaseEntitlements) IsSubscribed(ctx context.Context, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	e.mu.Lock()
	if c, ok := e.cache[userID]; ok && e.now().Before(c.expires) {
		e.mu.Unlock()
		return c.subscribed, nil
	}
	e.mu.Unlock()

	var rows []profileRow
	if _, err := e.source.From(e.table).
		Select("id,subscription_id", "", false).
		Eq("id", userID).
		Limit(1, "").
		ExecuteTo(&rows); err != nil {
		return false, fmt.Errorf("failed to load profile for %s: %w", userID, err)
	}

	subscribed := len(rows) > 0 && rows[0].SubscriptionID != nil && *rows[0].SubscriptionID != ""

	e.mu.Lock()
	e.cache[userID] = cachedEntitlement{subscribed: subscribed, expires: e.now().Add(e.ttl)}
	e.mu.Unlock()

	e.logger.Debug("Entitlement resolved", zap.String("user_id", userID), zap.Bool("subscribed", subscribed))
	return subscribed, nil
}

// StaticEntitlements answers the same for every user.
type StaticEntitlements bool

// IsSubscribed implements ports.Entitlements
func (s StaticEntitlements) IsSubscribed(context.Context, string) (bool, error) {
	return bool(s), nil
}

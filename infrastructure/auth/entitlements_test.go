package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	postgrest "github.com/supabase-community/postgrest-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func profileServer(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		assert.Equal(t, "/profile", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("id") {
		case "eq.paid":
			_, _ = w.Write([]byte(`[{"id":"paid","subscription_id":"sub_123"}]`))
		case "eq.free":
			_, _ = w.Write([]byte(`[{"id":"free","subscription_id":null}]`))
		case "eq.broken":
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"code":"XX000","message":"boom"}`))
		default:
			_, _ = w.Write([]byte(`[]`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSupabaseEntitlements(t *testing.T) {
	var hits int32
	srv := profileServer(t, &hits)
	e := NewSupabaseEntitlements(postgrest.NewClient(srv.URL, "public", nil), "", time.Minute, zap.NewNop())

	tests := []struct {
		user    string
		want    bool
		wantErr bool
	}{
		{user: "paid", want: true},
		{user: "free", want: false},
		{user: "missing", want: false},
		{user: "broken", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.user, func(t *testing.T) {
			got, err := e.IsSubscribed(context.Background(), tt.user)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSupabaseEntitlements_Caches(t *testing.T) {
	var hits int32
	srv := profileServer(t, &hits)
	e := NewSupabaseEntitlements(postgrest.NewClient(srv.URL, "public", nil), "profile", time.Minute, zap.NewNop())

	now := time.Now()
	e.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		ok, err := e.IsSubscribed(context.Background(), "paid")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	now = now.Add(2 * time.Minute)
	_, err := e.IsSubscribed(context.Background(), "paid")
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestStaticEntitlements(t *testing.T) {
	ok, err := StaticEntitlements(true).IsSubscribed(context.Background(), "anyone")
	require.NoError(t, err)
	assert.True(t, ok)
}

package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/quietloops/tally/internal/tally/cache"
	"github.com/quietloops/tally/internal/tally/store/drivers/sqlite"
	"github.com/quietloops/tally/pkg/jwtx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

// testEnv wires the services against an in-memory sqlite store and a
// miniredis-backed cache, mirroring the production wiring in app.New.
type testEnv struct {
	store    *sqlite.Store
	redis    *miniredis.Miniredis
	users    *UserService
	tokens   *TokenService
	expenses *ExpenseService
	issuer   *jwtx.Issuer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	issuer := &jwtx.Issuer{Secret: []byte("service-test-secret-abcdefgh0123")}
	users := &UserService{Store: st}

	return &testEnv{
		store:    st,
		redis:    mr,
		users:    users,
		tokens:   &TokenService{Users: users, Issuer: issuer},
		expenses: &ExpenseService{Store: st, Cache: cache.NewOrchestrator(cache.New(rdb))},
		issuer:   issuer,
	}
}

func requireValidToken(t *testing.T, issuer *jwtx.Issuer, token, wantSubject string, wantTTL time.Duration) {
	t.Helper()

	claims, err := issuer.Decode(token)
	require.NoError(t, err)
	require.Equal(t, wantSubject, claims.Subject)
	require.InDelta(t, wantTTL.Seconds(), claims.ExpiresAt.Sub(claims.IssuedAt.Time).Seconds(), 1)
}

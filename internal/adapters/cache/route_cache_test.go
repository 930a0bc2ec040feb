package cache

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v2"
	geojson "github.com/paulmach/go.geojson"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLine = geojson.NewLineStringGeometry([][]float64{
	{123.577964, -10.220964},
	{123.585788, -10.168121},
})

func newRedisCache(t *testing.T, ttl time.Duration) (*RedisRouteCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisRouteCache(client, ttl), mr
}

func TestRedisRouteCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, _ := newRedisCache(t, time.Hour)

	_, ok, err := c.Get(ctx, "route:v1:x")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Put(ctx, "route:v1:x", testLine))

	g, ok, err := c.Get(ctx, "route:v1:x")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testLine.LineString, g.LineString)
}

func TestRedisRouteCacheExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)

	require.NoError(t, c.Put(ctx, "k", testLine))
	assert.Equal(t, time.Minute, mr.TTL("k"))

	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisRouteCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, mr := newRedisCache(t, time.Minute)
	require.NoError(t, mr.Set("k", "not json"))

	_, _, err := c.Get(ctx, "k")
	assert.Error(t, err)
}

func newSQLCache(t *testing.T) (*SQLRouteCache, pgxmock.PgxPoolIface, time.Time) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewSQLRouteCache(mock, 24*time.Hour)
	c.now = func() time.Time { return now }
	return c, mock, now
}

func TestSQLRouteCacheHit(t *testing.T) {
	c, mock, now := newSQLCache(t)
	raw, err := testLine.MarshalJSON()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(selectRouteQuery)).
		WithArgs("k", now.Add(-24*time.Hour)).
		WillReturnRows(pgxmock.NewRows([]string{"geometry"}).AddRow(raw))

	g, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, testLine.LineString, g.LineString)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRouteCacheMiss(t *testing.T) {
	c, mock, _ := newSQLCache(t)

	mock.ExpectQuery(regexp.QuoteMeta(selectRouteQuery)).
		WithArgs("k", pgxmock.AnyArg()).
		WillReturnError(pgx.ErrNoRows)

	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRouteCachePut(t *testing.T) {
	c, mock, now := newSQLCache(t)
	raw, err := testLine.MarshalJSON()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta(upsertRouteQuery)).
		WithArgs("k", raw, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, c.Put(context.Background(), "k", testLine))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLRouteCachePutError(t *testing.T) {
	c, mock, _ := newSQLCache(t)
	dbErr := errors.New("connection reset")

	mock.ExpectExec(regexp.QuoteMeta(upsertRouteQuery)).
		WithArgs("k", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(dbErr)

	err := c.Put(context.Background(), "k", testLine)
	assert.ErrorIs(t, err, dbErr)
}

func TestSQLRouteCachePurgeAndSchema(t *testing.T) {
	c, mock, now := newSQLCache(t)

	mock.ExpectExec(regexp.QuoteMeta(createRouteCacheQuery)).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta(createRouteCacheIndexQuery)).WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec(regexp.QuoteMeta(purgeRoutesQuery)).
		WithArgs(now.Add(-24 * time.Hour)).
		WillReturnResult(pgxmock.NewResult("DELETE", 7))

	require.NoError(t, c.InitSchema(context.Background()))
	n, err := c.Purge(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

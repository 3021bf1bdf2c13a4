package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/imob-crm/internal/entity"
)

type mockProperties struct {
	mock.Mock
}

func (m *mockProperties) Get(ctx context.Context, id string) (*entity.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Property), args.Error(1)
}

func (m *mockProperties) Query(ctx context.Context, filter entity.PropertyFilter) ([]entity.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Property), args.Error(1)
}

type memStore struct {
	mu     sync.Mutex
	data   map[string]string
	getErr error
}

func (s *memStore) GetKey(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return "", false, s.getErr
	}
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *memStore) SetKey(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

var filter = entity.PropertyFilter{City: "Campinas", Type: entity.PropertyHouse, MinPrice: 800000, MaxPrice: 1200000, Limit: 5}

func TestQueryFillsCacheThenServesFromIt(t *testing.T) {
	inner := new(mockProperties)
	inner.On("Query", mock.Anything, filter).Return([]entity.Property{{ID: "p1", Title: "Casa", Price: 900000, Images: []string{}}}, nil).Once()
	store := &memStore{data: map[string]string{}}
	repo := NewCachedPropertyRepository(inner, store)

	first, err := repo.Query(context.Background(), filter)
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return store.size() == 1 }, time.Second, 10*time.Millisecond)

	second, err := repo.Query(context.Background(), filter)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	inner.AssertNumberOfCalls(t, "Query", 1)
}

// TestQueryCacheErrorFallsBackToDatabase - Redis fora do ar não afeta o resultado
func TestQueryCacheErrorFallsBackToDatabase(t *testing.T) {
	inner := new(mockProperties)
	inner.On("Query", mock.Anything, filter).Return([]entity.Property{{ID: "p1"}}, nil)
	repo := NewCachedPropertyRepository(inner, &memStore{data: map[string]string{}, getErr: errors.New("connection refused")})

	got, err := repo.Query(context.Background(), filter)

	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestQueryWithoutStoreIsPassThrough(t *testing.T) {
	inner := new(mockProperties)
	inner.On("Query", mock.Anything, filter).Return(nil, errors.New("db down"))
	repo := NewCachedPropertyRepository(inner, nil)

	_, err := repo.Query(context.Background(), filter)

	assert.Error(t, err)
}

func TestQueryCacheKeyDependsOnFilter(t *testing.T) {
	other := filter
	other.ExcludeID = "p9"

	assert.Equal(t, queryCacheKey(filter), queryCacheKey(filter))
	assert.NotEqual(t, queryCacheKey(filter), queryCacheKey(other))
}

package tracker

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"memomap/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockNameResolver is a mock implementation of the NameResolver interface
type MockNameResolver struct {
	mock.Mock
}

func (m *MockNameResolver) Resolve(ctx context.Context, lat, lon float64) (string, error) {
	args := m.Called(ctx, lat, lon)
	return args.String(0), args.Error(1)
}

// MockResolver is a mock implementation of the Resolver interface
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error) {
	args := m.Called(ctx, lat, lon)
	return args.Get(0).(*models.Place), args.Error(1)
}

func TestTracker_Update(t *testing.T) {
	tests := []struct {
		name     string
		readings []Reading
		setup    func(m *MockNameResolver)
		expected *models.Location
	}{
		{
			name:     "loading reading does not resolve",
			readings: []Reading{{Latitude: 40.7, Longitude: -74.0, Loading: true}},
			setup:    func(m *MockNameResolver) {},
			expected: nil,
		},
		{
			name:     "reading without coordinates does not resolve",
			readings: []Reading{{}},
			setup:    func(m *MockNameResolver) {},
			expected: nil,
		},
		{
			name: "identical readings resolve once",
			readings: []Reading{
				{Latitude: 40.7, Longitude: -74.0},
				{Latitude: 40.7, Longitude: -74.0},
				{Latitude: 40.7, Longitude: -74.0},
			},
			setup: func(m *MockNameResolver) {
				m.On("Resolve", mock.Anything, 40.7, -74.0).Return("New York, New York", nil).Once()
			},
			expected: &models.Location{Name: "New York, New York", Latitude: 40.7, Longitude: -74.0},
		},
		{
			name: "moved reading resolves again",
			readings: []Reading{
				{Latitude: 40.7, Longitude: -74.0},
				{Latitude: 42.36, Longitude: -71.06},
			},
			setup: func(m *MockNameResolver) {
				m.On("Resolve", mock.Anything, 40.7, -74.0).Return("New York, New York", nil).Once()
				m.On("Resolve", mock.Anything, 42.36, -71.06).Return("Boston, Massachusetts", nil).Once()
			},
			expected: &models.Location{Name: "Boston, Massachusetts", Latitude: 42.36, Longitude: -71.06},
		},
		{
			name:     "unnamed point yields no location",
			readings: []Reading{{Latitude: 30, Longitude: -40}, {Latitude: 30, Longitude: -40}},
			setup: func(m *MockNameResolver) {
				m.On("Resolve", mock.Anything, 30.0, -40.0).Return("", nil).Once()
			},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names := new(MockNameResolver)
			tt.setup(names)
			tr := New(names)

			var loc *models.Location
			var err error
			for _, r := range tt.readings {
				loc, err = tr.Update(context.Background(), r)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expected, loc)
			assert.Equal(t, tt.expected, tr.Current())
			names.AssertExpectations(t)
		})
	}
}

func TestTracker_UpdateError(t *testing.T) {
	names := new(MockNameResolver)
	names.On("Resolve", mock.Anything, 40.7, -74.0).Return("", assert.AnError).Once()
	names.On("Resolve", mock.Anything, 40.7, -74.0).Return("New York", nil).Once()
	tr := New(names)

	loc, err := tr.Update(context.Background(), Reading{Latitude: 40.7, Longitude: -74.0})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Nil(t, loc)

	loc, err = tr.Update(context.Background(), Reading{Latitude: 40.7, Longitude: -74.0})
	require.NoError(t, err)
	assert.Equal(t, "New York", loc.Name)
	names.AssertExpectations(t)
}

func TestTracker_CancelledSessionRecordsNothing(t *testing.T) {
	names := new(MockNameResolver)
	ctx, cancel := context.WithCancel(context.Background())
	names.On("Resolve", mock.Anything, 40.7, -74.0).Run(func(mock.Arguments) { cancel() }).Return("New York", nil)
	tr := New(names)

	loc, err := tr.Update(ctx, Reading{Latitude: 40.7, Longitude: -74.0})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, loc)
	assert.Nil(t, tr.Current())
}

func TestTracker_CurrentIsACopy(t *testing.T) {
	names := new(MockNameResolver)
	names.On("Resolve", mock.Anything, 1.0, 2.0).Return("Here", nil)
	tr := New(names)

	loc, err := tr.Update(context.Background(), Reading{Latitude: 1, Longitude: 2})
	require.NoError(t, err)
	loc.Name = "changed"

	assert.Equal(t, "Here", tr.Current().Name)
}

func TestNames_Resolve(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ReverseGeocode", mock.Anything, 40.7, -74.0).
		Return(&models.Place{City: "New York", State: "New York", Name: "New York, New York"}, nil).Once()
	resolver.On("ReverseGeocode", mock.Anything, 30.0, -40.0).Return((*models.Place)(nil), nil).Once()

	names, err := NewNames(resolver, 8, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		name, err := names.Resolve(context.Background(), 40.7, -74.0)
		require.NoError(t, err)
		assert.Equal(t, "New York, New York", name)
	}
	for i := 0; i < 2; i++ {
		name, err := names.Resolve(context.Background(), 30, -40)
		require.NoError(t, err)
		assert.Equal(t, "", name)
	}
	resolver.AssertExpectations(t)
}

func TestNames_ResolveErrorIsNotCached(t *testing.T) {
	resolver := new(MockResolver)
	resolver.On("ReverseGeocode", mock.Anything, 40.7, -74.0).Return((*models.Place)(nil), assert.AnError).Once()
	resolver.On("ReverseGeocode", mock.Anything, 40.7, -74.0).Return(&models.Place{Name: "New York"}, nil).Once()

	names, err := NewNames(resolver, 8, nil)
	require.NoError(t, err)

	_, err = names.Resolve(context.Background(), 40.7, -74.0)
	assert.ErrorIs(t, err, assert.AnError)

	name, err := names.Resolve(context.Background(), 40.7, -74.0)
	require.NoError(t, err)
	assert.Equal(t, "New York", name)
	resolver.AssertExpectations(t)
}

// slowResolver blocks until released and counts calls.
type slowResolver struct {
	calls   int32
	release chan struct{}
}

func (s *slowResolver) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.Place, error) {
	atomic.AddInt32(&s.calls, 1)
	<-s.release
	return &models.Place{Name: "Shared"}, nil
}

func TestNames_ConcurrentLookupsShareOneRequest(t *testing.T) {
	slow := &slowResolver{release: make(chan struct{})}
	names, err := NewNames(slow, 8, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = names.Resolve(context.Background(), 10, 20)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(slow.release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&slow.calls))
	for _, r := range results {
		assert.Equal(t, "Shared", r)
	}
}

func TestNames_ResolveReturnsWhenCallerLeaves(t *testing.T) {
	slow := &slowResolver{release: make(chan struct{})}
	defer close(slow.release)
	names, err := NewNames(slow, 8, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = names.Resolve(ctx, 10, 20)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

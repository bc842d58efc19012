package session

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentfair/server/internal/apperrors"
	"rentfair/server/internal/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testRecord() models.PropertyRecord {
	return models.PropertyRecord{PostalCode: 8001, Size: 80, Rooms: 3.5}
}

func TestSessionLifecycle(t *testing.T) {
	m := NewManager(testLogger(), time.Minute)

	s := m.Create()
	assert.Equal(t, PageWelcome, s.Page)
	assert.NotEmpty(t, s.ID)
	assert.NotNil(t, s.Cache())

	s, err := m.Start(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PageInput, s.Page)

	s, err = m.CompleteEstimate(s.ID, testRecord(), models.PriceEstimate{Point: 2000}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, PageResult, s.Page)
	require.NotNil(t, s.Record)
	assert.Equal(t, 8001, s.Record.PostalCode)

	s, err = m.Reset(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PageInput, s.Page)
}

func TestIllegalTransitions(t *testing.T) {
	m := NewManager(testLogger(), time.Minute)

	// Estimate straight from the welcome page.
	s := m.Create()
	_, err := m.CompleteEstimate(s.ID, testRecord(), models.PriceEstimate{}, nil, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)

	// Reset before any estimate was made.
	_, err = m.Reset(s.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
}

func TestGetUnknownSession(t *testing.T) {
	m := NewManager(testLogger(), time.Minute)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestSessionExpiry(t *testing.T) {
	m := NewManager(testLogger(), 10*time.Millisecond)

	s := m.Create()
	time.Sleep(30 * time.Millisecond)

	_, err := m.Get(s.ID)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestGetReturnsIsolatedSnapshot(t *testing.T) {
	m := NewManager(testLogger(), time.Minute)

	s := m.Create()
	_, err := m.Start(s.ID)
	require.NoError(t, err)

	before, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PageInput, before.Page)

	_, err = m.CompleteEstimate(s.ID, testRecord(), models.PriceEstimate{Point: 2000}, nil, nil)
	require.NoError(t, err)

	// The earlier snapshot is unaffected by the transition.
	assert.Equal(t, PageInput, before.Page)
	assert.Nil(t, before.Record)

	after, err := m.Get(s.ID)
	require.NoError(t, err)
	assert.Equal(t, PageResult, after.Page)
	require.NotNil(t, after.Record)
}

func TestConcurrentReadsDuringTransitions(t *testing.T) {
	m := NewManager(testLogger(), time.Minute)

	s := m.Create()
	_, err := m.Start(s.ID)
	require.NoError(t, err)

	done := make(chan struct{})
	var wg sync.WaitGroup
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snap, err := m.Get(s.ID)
				if err != nil {
					continue
				}
				_ = snap.Page
				if snap.Record != nil {
					_ = snap.Record.PostalCode
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		_, err := m.CompleteEstimate(s.ID, testRecord(), models.PriceEstimate{Point: float64(i)}, nil, nil)
		require.NoError(t, err)
		_, err = m.Reset(s.ID)
		require.NoError(t, err)
	}

	close(done)
	wg.Wait()
}

func TestInputPageAllowsEditing(t *testing.T) {
	m := NewManager(testLogger(), time.Minute)

	s := m.Create()
	_, err := m.Start(s.ID)
	require.NoError(t, err)

	// Starting again while already on the input page is a no-op edit, not
	// an error.
	_, err = m.Start(s.ID)
	assert.NoError(t, err)
}

package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/julianstephens/apptbook/internal/constants"
	"github.com/julianstephens/apptbook/internal/models"
	"github.com/julianstephens/apptbook/internal/repository"
	"github.com/julianstephens/apptbook/internal/repository/mocks"
	"github.com/julianstephens/apptbook/internal/storage"
	"github.com/julianstephens/apptbook/internal/storage/sqlite"
)

// mockWithFeed returns a mock repository whose Observe channel is driven by the test.
func mockWithFeed(t *testing.T) (*mocks.MockAppointmentRepository, chan storage.Snapshot) {
	t.Helper()
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockAppointmentRepository(ctrl)
	feed := make(chan storage.Snapshot, 1)
	repo.EXPECT().Observe(gomock.Any()).Return((<-chan storage.Snapshot)(feed))
	return repo, feed
}

func waitForStatus(t *testing.T, c *Controller, want Status) State {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for s := range c.Observe(ctx) {
		if s.Status == want {
			return s
		}
	}
	t.Fatalf("state never became %v (last: %v)", want, c.State().Status)
	return State{}
}

func TestInitialStateIsLoading(t *testing.T) {
	repo, feed := mockWithFeed(t)
	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	assert.Equal(t, Loading, c.State().Status)
}

func TestStateMapping(t *testing.T) {
	repo, feed := mockWithFeed(t)
	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	appts := []models.Appointment{models.NewAppointment("John Doe", 1700000000000, "10:00", "").WithID(1)}

	feed <- storage.Snapshot{Appointments: appts}
	s := waitForStatus(t, c, Success)
	assert.Equal(t, appts, s.Appointments)

	feed <- storage.Snapshot{Appointments: []models.Appointment{}}
	s = waitForStatus(t, c, Empty)
	assert.Empty(t, s.Appointments)

	feed <- storage.Snapshot{Err: errors.New("disk I/O error")}
	s = waitForStatus(t, c, Error)
	assert.Equal(t, "disk I/O error", s.Message)

	// Later good snapshots recover from Error
	feed <- storage.Snapshot{Appointments: appts}
	waitForStatus(t, c, Success)
}

func TestAddBlankNameInsertsNothing(t *testing.T) {
	repo, feed := mockWithFeed(t)
	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	for _, name := range []string{"", "   ", "\t\n"} {
		err := c.Add(name, 1700000000000, "10:00", "")
		assert.ErrorIs(t, err, ErrBlankName, "name %q", name)
	}
	// Insert was never expected, so gomock fails the test if it happened
	require.NoError(t, c.Wait())
	assert.NotEqual(t, Error, c.State().Status)
}

func TestAddInsertsScheduledWithZeroID(t *testing.T) {
	repo, feed := mockWithFeed(t)
	want := models.Appointment{
		ClientName:    "John Doe",
		DateTimestamp: 1700000000000,
		TimeString:    "10:00",
		Notes:         "Test Note",
		Status:        constants.StatusScheduled,
	}
	repo.EXPECT().Insert(gomock.Any(), want).Return(int64(1), nil)

	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	require.NoError(t, c.Add("John Doe", 1700000000000, "10:00", "Test Note"))
	require.NoError(t, c.Wait())
}

func TestUpdateResetsStatus(t *testing.T) {
	repo, feed := mockWithFeed(t)
	repo.EXPECT().Update(gomock.Any(), models.Appointment{
		ID:            5,
		ClientName:    "Bob",
		DateTimestamp: 42,
		TimeString:    "11:00",
		Notes:         "n",
		Status:        constants.StatusScheduled,
	}).Return(nil)

	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	c.Update(5, "Bob", 42, "11:00", "n")
	require.NoError(t, c.Wait())
}

func TestMarkCompletedChangesOnlyStatus(t *testing.T) {
	repo, feed := mockWithFeed(t)
	orig := models.Appointment{ID: 3, ClientName: "Alice", DateTimestamp: 9, TimeString: "09:30", Notes: "x", Status: constants.StatusScheduled}
	repo.EXPECT().Update(gomock.Any(), orig.WithStatus(constants.StatusCompleted)).Return(nil)

	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	c.MarkCompleted(orig)
	require.NoError(t, c.Wait())
}

func TestWriteFailureIsReportedNotShown(t *testing.T) {
	repo, feed := mockWithFeed(t)
	target := models.Appointment{ID: 8}
	repo.EXPECT().Delete(gomock.Any(), target).Return(errors.New("database is locked"))

	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	feed <- storage.Snapshot{Appointments: []models.Appointment{target}}
	waitForStatus(t, c, Success)

	c.Delete(target)
	err := c.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
	assert.Equal(t, Success, c.State().Status)

	// Errors are handed out once
	assert.NoError(t, c.Wait())
}

func TestGetByID(t *testing.T) {
	repo, feed := mockWithFeed(t)
	found := models.NewAppointment("Alice", 1, "09:00", "").WithID(2)
	repo.EXPECT().Get(gomock.Any(), int64(2)).Return(&found, nil)
	repo.EXPECT().Get(gomock.Any(), int64(99)).Return(nil, nil)

	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	got, err := c.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, &found, got)

	missing, err := c.GetByID(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestCloseCancelsInflightWrites(t *testing.T) {
	repo, feed := mockWithFeed(t)
	started := make(chan struct{})
	repo.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, a models.Appointment) (int64, error) {
			close(started)
			<-ctx.Done()
			return 0, ctx.Err()
		})

	c := New(context.Background(), repo)
	require.NoError(t, c.Add("Slow", 1, "09:00", ""))
	<-started

	// The data access layer closes its channel on cancel; the mock feed
	// has to be closed by hand.
	close(feed)

	closed := make(chan struct{})
	go func() {
		c.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the in-flight write")
	}

	// Writes after Close are dropped
	assert.NoError(t, c.Add("Late", 1, "09:00", ""))
	assert.ErrorIs(t, c.Wait(), context.Canceled)
}

func newSQLiteController(t *testing.T) *Controller {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "apptbook.db"))
	require.NoError(t, store.Init())

	c := New(context.Background(), repository.New(storage.NewAppointments(store)))
	t.Cleanup(func() {
		c.Close()
		store.Close()
	})
	return c
}

func TestScenarioInsertThenList(t *testing.T) {
	c := newSQLiteController(t)
	waitForStatus(t, c, Empty)

	require.NoError(t, c.Add("John Doe", 1700000000000, "10:00", "Test Note"))
	require.NoError(t, c.Wait())

	s := waitForStatus(t, c, Success)
	require.Len(t, s.Appointments, 1)
	got := s.Appointments[0]
	assert.Equal(t, "John Doe", got.ClientName)
	assert.Equal(t, int64(1700000000000), got.DateTimestamp)
	assert.Equal(t, "10:00", got.TimeString)
	assert.Equal(t, "Test Note", got.Notes)
	assert.Equal(t, constants.StatusScheduled, got.Status)
	assert.NotZero(t, got.ID)
}

func TestScenarioUpdateMissingIDChangesNothing(t *testing.T) {
	c := newSQLiteController(t)
	require.NoError(t, c.Add("Alice", 1, "09:00", ""))
	require.NoError(t, c.Wait())
	before := waitForStatus(t, c, Success).Appointments

	c.Update(5, "Bob", 2, "10:00", "")
	require.NoError(t, c.Wait())

	missing, err := c.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Nil(t, missing)
	assert.Equal(t, before, c.State().Appointments)
}

func TestScenarioDeleteLastGoesEmpty(t *testing.T) {
	c := newSQLiteController(t)
	require.NoError(t, c.Add("Alice", 1, "09:00", ""))
	require.NoError(t, c.Wait())
	only := waitForStatus(t, c, Success).Appointments[0]

	c.Delete(only)
	require.NoError(t, c.Wait())
	s := waitForStatus(t, c, Empty)
	assert.Nil(t, s.Appointments)

	// Deleting again is a no-op
	c.Delete(only)
	require.NoError(t, c.Wait())
	assert.Equal(t, Empty, c.State().Status)
}

func TestScenarioMarkCompleted(t *testing.T) {
	c := newSQLiteController(t)
	require.NoError(t, c.Add("Alice", 1, "09:00", "notes"))
	require.NoError(t, c.Wait())
	orig := waitForStatus(t, c, Success).Appointments[0]

	c.MarkCompleted(orig)
	require.NoError(t, c.Wait())

	got, err := c.GetByID(context.Background(), orig.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, orig.WithStatus(constants.StatusCompleted), *got)
}

func TestSettledSkipsLoading(t *testing.T) {
	c := newSQLiteController(t)
	require.NoError(t, c.Add("Alice", 1, "09:00", ""))
	require.NoError(t, c.Wait())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s, err := c.Settled(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, Loading, s.Status)
}

func TestSettledHonoursContext(t *testing.T) {
	repo, feed := mockWithFeed(t)
	c := New(context.Background(), repo)
	defer func() { close(feed); c.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	s, err := c.Settled(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Loading, s.Status)
}

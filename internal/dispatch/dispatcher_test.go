package dispatch_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/caption-art/internal/dispatch"
	"github.com/ironsheep/caption-art/internal/mocks"
)

var payload = []byte("\x89PNG\r\n\x1a\nfake")

func testConfig() dispatch.Config {
	return dispatch.Config{
		ReleaseDelay:  100 * time.Millisecond,
		MaxRetries:    2,
		RetryInterval: time.Millisecond,
	}
}

// expectRelease wires the delayed release and returns the channel that
// triggers it and one that closes once Release ran.
func expectRelease(host *mocks.MockHost, clock *mocks.MockClock, handle string) (chan time.Time, chan struct{}) {
	fire := make(chan time.Time, 1)
	released := make(chan struct{})
	clock.EXPECT().After(100 * time.Millisecond).Return((<-chan time.Time)(fire))
	host.EXPECT().Release(handle).Do(func(string) { close(released) })
	return fire, released
}

func TestDispatch_Save(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	host.EXPECT().Acquire(payload, "image/png").Return("h1", nil)
	host.EXPECT().Save(gomock.Any(), "h1", "a.png").Return("/out/a.png", nil)
	fire, released := expectRelease(host, clock, "h1")

	d := dispatch.NewDispatcher(host, clock, testConfig())
	result, err := d.Dispatch(context.Background(), payload, "image/png", "a.png")
	require.NoError(t, err)

	assert.Equal(t, dispatch.MethodSave, result.Method)
	assert.Equal(t, "/out/a.png", result.Location)
	assert.Equal(t, "a.png", result.Filename)
	assert.False(t, result.ManualSave())

	select {
	case <-released:
		t.Fatal("handle released before the delay elapsed")
	case <-time.After(20 * time.Millisecond):
	}

	fire <- time.Now()
	d.Wait()
	<-released
}

func TestDispatch_BlockedSaveFallsBackToViewer(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	host.EXPECT().Acquire(payload, "image/jpeg").Return("h2", nil)
	host.EXPECT().Save(gomock.Any(), "h2", "b.jpg").
		Return("", fmt.Errorf("%w: read-only", dispatch.ErrBlocked)).Times(1)
	host.EXPECT().OpenViewer(gomock.Any(), "h2", "b.jpg").Return("/tmp/b.jpg", nil)
	fire, _ := expectRelease(host, clock, "h2")
	fire <- time.Now()

	d := dispatch.NewDispatcher(host, clock, testConfig())
	result, err := d.Dispatch(context.Background(), payload, "image/jpeg", "b.jpg")
	require.NoError(t, err)
	d.Wait()

	assert.Equal(t, dispatch.MethodViewer, result.Method)
	assert.Equal(t, "/tmp/b.jpg", result.Location)
}

func TestDispatch_EverythingBlockedIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	host.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return("h3", nil)
	host.EXPECT().Save(gomock.Any(), "h3", "c.png").Return("", dispatch.ErrBlocked)
	host.EXPECT().OpenViewer(gomock.Any(), "h3", "c.png").Return("", dispatch.ErrBlocked)
	fire, _ := expectRelease(host, clock, "h3")
	fire <- time.Now()

	d := dispatch.NewDispatcher(host, clock, testConfig())
	result, err := d.Dispatch(context.Background(), payload, "image/png", "c.png")
	require.NoError(t, err)
	d.Wait()

	assert.True(t, result.ManualSave())
	assert.ErrorIs(t, result.Err, dispatch.ErrBlocked)
	assert.Empty(t, result.Location)
}

func TestDispatch_TransientSaveFailureRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	host.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return("h4", nil)
	gomock.InOrder(
		host.EXPECT().Save(gomock.Any(), "h4", "d.png").Return("", errors.New("disk busy")),
		host.EXPECT().Save(gomock.Any(), "h4", "d.png").Return("/out/d.png", nil),
	)
	fire, _ := expectRelease(host, clock, "h4")
	fire <- time.Now()

	d := dispatch.NewDispatcher(host, clock, testConfig())
	result, err := d.Dispatch(context.Background(), payload, "image/png", "d.png")
	require.NoError(t, err)
	d.Wait()

	assert.Equal(t, dispatch.MethodSave, result.Method)
	assert.Equal(t, "/out/d.png", result.Location)
}

func TestDispatch_AcquireFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	host.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return("", errors.New("out of handles"))

	d := dispatch.NewDispatcher(host, clock, testConfig())
	_, err := d.Dispatch(context.Background(), payload, "image/png", "e.png")
	assert.Error(t, err)
	d.Wait()
}

func TestDispatch_NoReleaseDelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	host.EXPECT().Acquire(gomock.Any(), gomock.Any()).Return("h5", nil)
	host.EXPECT().Save(gomock.Any(), "h5", "f.png").Return("/out/f.png", nil)
	host.EXPECT().Release("h5")

	cfg := testConfig()
	cfg.ReleaseDelay = 0
	d := dispatch.NewDispatcher(host, clock, cfg)
	_, err := d.Dispatch(context.Background(), payload, "image/png", "f.png")
	require.NoError(t, err)
	d.Wait()
}

func TestExistingNames(t *testing.T) {
	ctrl := gomock.NewController(t)
	host := mocks.NewMockHost(ctrl)
	clock := mocks.NewMockClock(ctrl)

	gomock.InOrder(
		host.EXPECT().ExistingNames().Return([]string{"a.png"}, nil),
		host.EXPECT().ExistingNames().Return(nil, errors.New("io error")),
	)

	d := dispatch.NewDispatcher(host, clock, testConfig())
	assert.Equal(t, []string{"a.png"}, d.ExistingNames())
	assert.Nil(t, d.ExistingNames())
}

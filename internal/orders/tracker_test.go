package orders

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhublearning/skillhub-client/internal/api"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

type fakeTrackingAPI struct {
	orders []api.VerifiedOrder
	err    error
	calls  int
}

func (f *fakeTrackingAPI) OrderStatus(_ context.Context) ([]api.VerifiedOrder, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.orders, nil
}

type fakeRedirector struct {
	authCalls int
}

func (f *fakeRedirector) ToAuth(_ context.Context) { f.authCalls++ }

func newTracker(t *testing.T, client *fakeTrackingAPI) (*Tracker, *session.MemoryStore, *fakeRedirector, *notify.Capture) {
	t.Helper()
	store := session.NewMemoryStore()
	nav := &fakeRedirector{}
	notices := notify.NewCapture()
	log := logger.New(logger.Options{ServiceName: "orders-test", Output: io.Discard})
	tracker, err := NewTracker(client, store, nav, notices, log)
	require.NoError(t, err)
	return tracker, store, nav, notices
}

func order(id, status string) api.VerifiedOrder {
	return api.VerifiedOrder{ID: id, Status: status}
}

func TestLoadPrependsNewPendingOrder(t *testing.T) {
	client := &fakeTrackingAPI{orders: []api.VerifiedOrder{
		order("aaaaaaaaaaaaaaaaaaaaaaaa", "Completed"),
	}}
	tracker, _, _, notices := newTracker(t, client)

	pending := order("bbbbbbbbbbbbbbbbbbbbbbbb", "Pending")
	require.NoError(t, tracker.Load(context.Background(), &pending))

	got := tracker.Orders()
	require.Len(t, got, 2)
	assert.Equal(t, "bbbbbbbbbbbbbbbbbbbbbbbb", got[0].ID, "fresh order appears first")
	assert.Equal(t, []string{"New order added to tracking"}, notices.ByLevel("success"))
}

func TestLoadDedupesPendingAlreadyOnServer(t *testing.T) {
	client := &fakeTrackingAPI{orders: []api.VerifiedOrder{
		order("aaaaaaaaaaaaaaaaaaaaaaaa", "Completed"),
	}}
	tracker, _, _, notices := newTracker(t, client)

	pending := order("aaaaaaaaaaaaaaaaaaaaaaaa", "Pending")
	require.NoError(t, tracker.Load(context.Background(), &pending))

	got := tracker.Orders()
	require.Len(t, got, 1)
	assert.Equal(t, "Completed", got[0].Status, "the fetched copy wins over the handed-over one")
	assert.Empty(t, notices.ByLevel("success"))
}

func TestLoadWithoutPending(t *testing.T) {
	client := &fakeTrackingAPI{orders: []api.VerifiedOrder{
		order("aaaaaaaaaaaaaaaaaaaaaaaa", "Completed"),
		order("bbbbbbbbbbbbbbbbbbbbbbbb", "Pending"),
	}}
	tracker, _, _, _ := newTracker(t, client)

	require.NoError(t, tracker.Load(context.Background(), nil))
	assert.Len(t, tracker.Orders(), 2)
	assert.False(t, tracker.Empty())
}

func TestEmptyOnlyAfterLoad(t *testing.T) {
	client := &fakeTrackingAPI{}
	tracker, _, _, _ := newTracker(t, client)

	assert.False(t, tracker.Empty(), "empty-state hidden before the first fetch completes")
	require.NoError(t, tracker.Load(context.Background(), nil))
	assert.True(t, tracker.Empty())
}

func TestLoadAuthLossClearsSessionAndRedirects(t *testing.T) {
	client := &fakeTrackingAPI{err: pkgerrors.New(pkgerrors.CodeAuthRequired, "Invalid token")}
	tracker, store, nav, _ := newTracker(t, client)
	require.NoError(t, store.Set(context.Background(), session.KeyToken, "stale-token"))

	err := tracker.Load(context.Background(), nil)
	require.Error(t, err)

	assert.Equal(t, 1, nav.authCalls)
	token, getErr := store.Get(context.Background(), session.KeyToken)
	require.NoError(t, getErr)
	assert.Empty(t, token)
	assert.False(t, tracker.Empty(), "a failed load never flips the empty-state")
}

func TestLoadServerErrorNotifies(t *testing.T) {
	client := &fakeTrackingAPI{err: pkgerrors.New(pkgerrors.CodeServer, "Something went wrong")}
	tracker, _, nav, notices := newTracker(t, client)

	require.Error(t, tracker.Load(context.Background(), nil))
	assert.Zero(t, nav.authCalls)
	assert.Equal(t, []string{"Something went wrong"}, notices.ByLevel("error"))
}

func TestStatusBadgeIsCaseInsensitive(t *testing.T) {
	tests := []struct {
		status string
		want   Badge
	}{
		{"Completed", BadgeSuccess},
		{"completed", BadgeSuccess},
		{"COMPLETED", BadgeSuccess},
		{"Pending", BadgeWarning},
		{"pending", BadgeWarning},
		{"Refunded", BadgeDefault},
		{"", BadgeDefault},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, StatusBadge(tc.status), "status %q", tc.status)
	}
}

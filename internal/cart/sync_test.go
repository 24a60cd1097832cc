package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhublearning/skillhub-client/internal/api"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

type fakeSyncAPI struct {
	mu         sync.Mutex
	replaced   [][]api.CartEntry
	replaceErr error
	cart       []api.CartEntry
	fetchErr   error
	catalog    []api.Course
}

func (f *fakeSyncAPI) FetchCart(context.Context) ([]api.CartEntry, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.cart, nil
}

func (f *fakeSyncAPI) ReplaceCart(_ context.Context, entries []api.CartEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, entries)
	return nil
}

func (f *fakeSyncAPI) AllCourses(context.Context, string) ([]api.Course, error) {
	return f.catalog, nil
}

func (f *fakeSyncAPI) replacedCalls() [][]api.CartEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]api.CartEntry, len(f.replaced))
	copy(out, f.replaced)
	return out
}

func authedSession(t *testing.T) *session.Session {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	store := session.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), session.KeyToken, token))
	return session.NewSession(store)
}

func newTestSyncer(t *testing.T, client syncAPI, sess *session.Session, capture *notify.Capture) *Syncer {
	t.Helper()
	s, err := NewSyncer(client, sess, capture, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)
	return s
}

func TestPushFiltersInvalidItems(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{}
	capture := notify.NewCapture()
	s := newTestSyncer(t, client, authedSession(t), capture)

	items := []LineItem{
		{ID: courseA, Title: "Valid", Price: decimal.NewFromInt(100), Quantity: 1},
		{ID: courseB, Title: "Negative", Price: decimal.NewFromInt(-5), Quantity: 1},
	}
	err := s.Push(ctx, items)
	require.Error(t, err, "invalid items should be reported")

	calls := client.replacedCalls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0], 1)
	assert.Equal(t, courseA, calls[0][0].CourseID)

	warnings := capture.ByLevel("warning")
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "Negative")
}

func TestPushRejectsNonCanonicalIdentifiers(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{}
	capture := notify.NewCapture()
	s := newTestSyncer(t, client, authedSession(t), capture)

	items := []LineItem{
		{ID: "short-id", Price: decimal.NewFromInt(10), Quantity: 1},
		{ID: "zzzzzzzzzzzzzzzzzzzzzzzz", Price: decimal.NewFromInt(10), Quantity: 1},
	}
	_ = s.Push(ctx, items)

	assert.Empty(t, client.replacedCalls(), "nothing valid should be transmitted")
	assert.Len(t, capture.ByLevel("warning"), 2)
}

func TestPushSkipsWithoutSession(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{}
	s := newTestSyncer(t, client, session.NewSession(session.NewMemoryStore()), notify.NewCapture())

	require.NoError(t, s.Push(ctx, []LineItem{lineItem(courseA, 100)}))
	assert.Empty(t, client.replacedCalls())
}

func TestPushFailureDoesNotRollBackLocalState(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{replaceErr: pkgerrors.New(pkgerrors.CodeNetwork, "")}
	capture := notify.NewCapture()
	s := newTestSyncer(t, client, authedSession(t), capture)

	m := NewManager()
	require.NoError(t, m.AddItem(lineItem(courseA, 100)))

	err := s.Push(ctx, m.Items())
	require.Error(t, err)

	assert.Equal(t, 1, m.Len(), "optimistic local state survives a failed push")
	require.Len(t, capture.ByLevel("error"), 1)
	assert.Contains(t, capture.ByLevel("error")[0], "Failed to sync cart")
}

func TestBindPushesOnMutation(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{}
	s := newTestSyncer(t, client, authedSession(t), notify.NewCapture())

	m := NewManager()
	s.Bind(ctx, m)
	require.NoError(t, m.AddItem(lineItem(courseA, 100)))

	require.Eventually(t, func() bool {
		return len(client.replacedCalls()) == 1
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, courseA, client.replacedCalls()[0][0].CourseID)
}

func TestWaitFlushesBoundPushes(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{}
	s := newTestSyncer(t, client, authedSession(t), notify.NewCapture())

	m := NewManager()
	s.Bind(ctx, m)

	// A mutation returns before its push lands; Wait is the barrier a
	// short-lived caller needs before exiting.
	require.NoError(t, m.AddItem(lineItem(courseA, 100)))
	m.RemoveItem(courseB)
	m.Wait()

	calls := client.replacedCalls()
	require.Len(t, calls, 1, "RemoveItem of an unknown id must not push")
	assert.Equal(t, courseA, calls[0][0].CourseID)
}

func TestPullReplacesLocalStateWholesale(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{
		cart: []api.CartEntry{
			{CourseID: courseA, Quantity: 2},
			{CourseID: courseB, Quantity: 0},
		},
		catalog: []api.Course{
			{ID: courseA, Title: "Go Basics", Price: decimal.NewFromInt(100)},
			{ID: courseB, Title: "Advanced Go", Price: decimal.NewFromInt(200)},
		},
	}
	s := newTestSyncer(t, client, authedSession(t), notify.NewCapture())

	m := NewManager()
	m.Replace([]LineItem{lineItem("cccccccccccccccccccccccc", 1)})

	require.NoError(t, s.Pull(ctx, m))

	items := m.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "Go Basics", items[0].Title)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity, "non-positive server quantities are floored")
}

func TestPullDropsUnknownCoursesWithWarning(t *testing.T) {
	ctx := context.Background()
	client := &fakeSyncAPI{
		cart:    []api.CartEntry{{CourseID: courseA, Quantity: 1}},
		catalog: nil,
	}
	capture := notify.NewCapture()
	s := newTestSyncer(t, client, authedSession(t), capture)

	m := NewManager()
	require.NoError(t, s.Pull(ctx, m))
	assert.Zero(t, m.Len())
	assert.Len(t, capture.ByLevel("warning"), 1)
}

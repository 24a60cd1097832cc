package wishlist

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillhublearning/skillhub-client/internal/cart"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

const (
	courseGo   = "aaaaaaaaaaaaaaaaaaaaaaaa"
	courseRust = "bbbbbbbbbbbbbbbbbbbbbbbb"
)

func course(id, title string) cart.LineItem {
	return cart.LineItem{
		ID:       id,
		Title:    title,
		Price:    decimal.NewFromInt(499),
		Quantity: 1,
	}
}

func TestAddDedupes(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))
	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))
	require.NoError(t, m.Add(course(courseRust, "Systems in Rust")))

	assert.Len(t, m.Items(), 2)
	assert.True(t, m.Contains(courseGo))
}

func TestAddRejectsMissingID(t *testing.T) {
	m := NewManager()
	err := m.Add(cart.LineItem{Title: "nameless"})
	require.Error(t, err)
	assert.Empty(t, m.Items())
}

func TestRemoveUnknownIsNoop(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))

	m.Remove(courseRust)
	m.Remove(courseRust)

	assert.Len(t, m.Items(), 1)
}

func TestMoveToCart(t *testing.T) {
	m := NewManager()
	target := cart.NewManager()
	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))

	require.NoError(t, m.MoveToCart(courseGo, target))

	assert.False(t, m.Contains(courseGo), "moved course leaves the wishlist")
	assert.Equal(t, 1, target.Len())
}

func TestMoveToCartUnknownCourse(t *testing.T) {
	m := NewManager()
	target := cart.NewManager()

	err := m.MoveToCart(courseGo, target)
	require.Error(t, err)
	assert.Zero(t, target.Len())
}

func TestMoveToCartRejectedKeepsEntry(t *testing.T) {
	m := NewManager()
	target := cart.NewManager()

	bad := course("", "broken")
	m.mu.Lock()
	m.items = append(m.items, bad) // bypass Add's guard to simulate a stale entry
	m.mu.Unlock()

	err := m.MoveToCart("", target)
	require.Error(t, err)
	assert.Len(t, m.Items(), 1, "entry survives when the cart rejects it")
}

func TestReplaceDropsDuplicatesAndDoesNotNotify(t *testing.T) {
	m := NewManager()
	notified := make(chan struct{}, 1)
	m.Subscribe(func(_ []cart.LineItem) { notified <- struct{}{} })

	m.Replace([]cart.LineItem{
		course(courseGo, "Go from Scratch"),
		course(courseGo, "Go from Scratch"),
		course(courseRust, "Systems in Rust"),
		{Title: "no id"},
	})

	assert.Len(t, m.Items(), 2)
	select {
	case <-notified:
		t.Fatal("Replace must not notify subscribers")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscriberNotifiedOnMutation(t *testing.T) {
	m := NewManager()
	var (
		mu   sync.Mutex
		seen [][]cart.LineItem
	)
	done := make(chan struct{}, 4)
	m.Subscribe(func(items []cart.LineItem) {
		mu.Lock()
		seen = append(seen, items)
		mu.Unlock()
		done <- struct{}{}
	})

	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))
	<-done
	m.Remove(courseGo)
	<-done

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Len(t, seen[0], 1)
	assert.Empty(t, seen[1])
}

type fakeWishlistAPI struct {
	mu     sync.Mutex
	pushes [][]string
	err    error
}

func (f *fakeWishlistAPI) ReplaceWishlist(_ context.Context, courseIDs []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, courseIDs)
	return f.err
}

func (f *fakeWishlistAPI) pushed() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]string, len(f.pushes))
	copy(out, f.pushes)
	return out
}

func authedSession(t *testing.T) *session.Session {
	t.Helper()
	store := session.NewMemoryStore()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), session.KeyToken, signed))
	return session.NewSession(store)
}

func newSyncer(t *testing.T, client *fakeWishlistAPI, sess *session.Session) (*Syncer, *notify.Capture) {
	t.Helper()
	notices := notify.NewCapture()
	log := logger.New(logger.Options{ServiceName: "wishlist-test", Output: io.Discard})
	s, err := NewSyncer(client, sess, notices, log)
	require.NoError(t, err)
	return s, notices
}

func TestPushSendsCourseIDs(t *testing.T) {
	client := &fakeWishlistAPI{}
	s, _ := newSyncer(t, client, authedSession(t))

	items := []cart.LineItem{course(courseGo, "Go from Scratch"), course(courseRust, "Systems in Rust")}
	require.NoError(t, s.Push(context.Background(), items))

	pushes := client.pushed()
	require.Len(t, pushes, 1)
	assert.Equal(t, []string{courseGo, courseRust}, pushes[0])
}

func TestPushSkipsWithoutSession(t *testing.T) {
	client := &fakeWishlistAPI{}
	s, _ := newSyncer(t, client, session.NewSession(session.NewMemoryStore()))

	require.NoError(t, s.Push(context.Background(), []cart.LineItem{course(courseGo, "Go from Scratch")}))
	assert.Empty(t, client.pushed())
}

func TestBindPushesOnMutation(t *testing.T) {
	client := &fakeWishlistAPI{}
	s, _ := newSyncer(t, client, authedSession(t))

	m := NewManager()
	s.Bind(context.Background(), m)
	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))

	assert.Eventually(t, func() bool {
		return len(client.pushed()) == 1
	}, time.Second, 10*time.Millisecond)
}

func TestWaitFlushesBoundPushes(t *testing.T) {
	client := &fakeWishlistAPI{}
	s, _ := newSyncer(t, client, authedSession(t))

	m := NewManager()
	s.Bind(context.Background(), m)
	require.NoError(t, m.Add(course(courseGo, "Go from Scratch")))
	m.Wait()

	pushes := client.pushed()
	require.Len(t, pushes, 1)
	assert.Equal(t, []string{courseGo}, pushes[0])
}

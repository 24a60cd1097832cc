package cart

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/skillhublearning/skillhub-client/internal/api"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

type syncAPI interface {
	FetchCart(ctx context.Context) ([]api.CartEntry, error)
	ReplaceCart(ctx context.Context, entries []api.CartEntry) error
	AllCourses(ctx context.Context, search string) ([]api.Course, error)
}

// Syncer reconciles the in-memory cart with the server-persisted one. It
// pushes on every local mutation and pulls once at startup; the local
// optimistic state is never rolled back on a failed push, and the server
// cart is the ground truth on the next pull.
type Syncer struct {
	api      syncAPI
	sess     *session.Session
	notifier notify.Notifier
	log      *logger.Logger
}

func NewSyncer(client syncAPI, sess *session.Session, notifier notify.Notifier, log *logger.Logger) (*Syncer, error) {
	if client == nil {
		return nil, fmt.Errorf("api client is required")
	}
	if sess == nil {
		return nil, fmt.Errorf("session is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Syncer{api: client, sess: sess, notifier: notifier, log: log}, nil
}

// Bind subscribes the syncer to the manager so every mutation triggers a
// push. Pushes are not queued; under rapid successive mutations a newer
// push may start before an older one resolves, and last-applied-wins is
// accepted because the server cart is re-fetchable ground truth.
func (s *Syncer) Bind(ctx context.Context, manager *Manager) {
	manager.Subscribe(func(items []LineItem) {
		s.Push(ctx, items)
	})
}

// Push validates and transmits the cart as a batch replace. Items failing
// the identifier/price/quantity invariants are excluded with one warning
// each, never mutated and never sent; if nothing valid remains, nothing is
// sent at all.
func (s *Syncer) Push(ctx context.Context, items []LineItem) error {
	if !s.sess.Authenticated(ctx) {
		s.log.Debug(ctx, "skipping cart push without an authenticated session")
		return nil
	}
	if len(items) == 0 {
		return nil
	}

	var invalid error
	entries := make([]api.CartEntry, 0, len(items))
	for _, item := range items {
		if !item.Valid() {
			s.notifier.Warning(ctx, fmt.Sprintf("Invalid cart item: %s", itemLabel(item)))
			invalid = multierr.Append(invalid, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid cart item %q", item.ID)))
			continue
		}
		entries = append(entries, api.CartEntry{CourseID: item.ID, Quantity: item.Quantity})
	}

	if len(entries) == 0 {
		s.log.Info(ctx, "no valid cart items to sync")
		return invalid
	}

	if err := s.api.ReplaceCart(ctx, entries); err != nil {
		display := pkgerrors.As(err).Display()
		s.notifier.Error(ctx, "Failed to sync cart with server: "+display)
		s.log.Error(ctx, "cart push failed", err)
		return multierr.Append(invalid, err)
	}

	s.log.Debug(ctx, "cart synced")
	return invalid
}

// Pull replaces the local cart wholesale with the server's. Entries whose
// course no longer exists in the catalog are dropped with a warning.
func (s *Syncer) Pull(ctx context.Context, manager *Manager) error {
	if !s.sess.Authenticated(ctx) {
		return nil
	}

	entries, err := s.api.FetchCart(ctx)
	if err != nil {
		s.notifier.Error(ctx, "Failed to load cart from server: "+pkgerrors.As(err).Display())
		return err
	}
	if len(entries) == 0 {
		manager.Replace(nil)
		return nil
	}

	catalog, err := s.api.AllCourses(ctx, "")
	if err != nil {
		s.notifier.Error(ctx, "Failed to load courses: "+pkgerrors.As(err).Display())
		return err
	}
	byID := make(map[string]api.Course, len(catalog))
	for _, course := range catalog {
		byID[course.ID] = course
	}

	items := make([]LineItem, 0, len(entries))
	for _, entry := range entries {
		course, ok := byID[entry.CourseID]
		if !ok {
			s.notifier.Warning(ctx, fmt.Sprintf("Course %s is no longer available", entry.CourseID))
			continue
		}
		quantity := entry.Quantity
		if quantity < 1 {
			quantity = 1
		}
		items = append(items, LineItem{
			ID:         course.ID,
			Title:      course.Title,
			Price:      course.Price,
			Quantity:   quantity,
			Instructor: course.Instructor,
			Image:      course.Image,
		})
	}

	manager.Replace(items)
	return nil
}

func itemLabel(item LineItem) string {
	if item.Title != "" {
		return item.Title
	}
	if item.ID != "" {
		return item.ID
	}
	return "unknown"
}

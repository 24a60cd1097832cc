package wishlist

import (
	"context"
	"fmt"

	"github.com/skillhublearning/skillhub-client/internal/cart"
	"github.com/skillhublearning/skillhub-client/internal/notify"
	"github.com/skillhublearning/skillhub-client/internal/session"
	pkgerrors "github.com/skillhublearning/skillhub-client/pkg/errors"
	"github.com/skillhublearning/skillhub-client/pkg/logger"
)

type syncAPI interface {
	ReplaceWishlist(ctx context.Context, courseIDs []string) error
}

// Syncer mirrors every wishlist mutation to the server as a batch
// replace of course ids. Like the cart, the local state is optimistic
// and never rolled back on a failed push.
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

// Bind subscribes the syncer to the manager so every mutation pushes.
func (s *Syncer) Bind(ctx context.Context, manager *Manager) {
	manager.Subscribe(func(items []cart.LineItem) {
		s.Push(ctx, items)
	})
}

// Push transmits the saved course ids. Entries without an id are skipped.
func (s *Syncer) Push(ctx context.Context, items []cart.LineItem) error {
	if !s.sess.Authenticated(ctx) {
		s.log.Debug(ctx, "skipping wishlist push without an authenticated session")
		return nil
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		ids = append(ids, item.ID)
	}

	if err := s.api.ReplaceWishlist(ctx, ids); err != nil {
		s.notifier.Error(ctx, "Failed to sync wishlist with server: "+pkgerrors.As(err).Display())
		s.log.Error(ctx, "wishlist push failed", err)
		return err
	}

	s.log.Debug(ctx, "wishlist synced")
	return nil
}

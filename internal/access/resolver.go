// internal/access/resolver.go
package access

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/brightpost/mailing-backend/internal/apperrors"
	"github.com/brightpost/mailing-backend/internal/model"
)

// Capability names are "<entity>.<op>".
const (
	PermSubscriberView   = "subscriber.view"
	PermSubscriberAdd    = "subscriber.add"
	PermSubscriberChange = "subscriber.change"
	PermSubscriberDelete = "subscriber.delete"

	PermMessageView   = "message.view"
	PermMessageAdd    = "message.add"
	PermMessageChange = "message.change"
	PermMessageDelete = "message.delete"

	PermCampaignView    = "campaign.view"
	PermCampaignAdd     = "campaign.add"
	PermCampaignChange  = "campaign.change"
	PermCampaignDelete  = "campaign.delete"
	PermCampaignSend    = "campaign.send"
	PermCampaignDisable = "campaign.disable"
)

// Resolver decides whether an actor may see or touch an entity. Every
// call site depends on this type rather than on group membership
// queries directly.
type Resolver struct {
	cache *ListCache // nil when caching is disabled
}

func NewResolver(cache *ListCache) *Resolver {
	return &Resolver{cache: cache}
}

// Authorize allows the entity's owner, then any actor holding the
// capability, and denies everyone else. The denial is distinguishable
// from not-found.
func (r *Resolver) Authorize(actor *model.Account, ownerID *int, permission string) error {
	if actor == nil {
		return apperrors.ErrAccessDenied
	}
	if ownerID != nil && *ownerID == actor.ID {
		return nil
	}
	if actor.HasPermission(permission) {
		return nil
	}
	return apperrors.ErrAccessDenied
}

// CanViewAll reports whether the actor holds the blanket view
// capability for the entity type.
func (r *Resolver) CanViewAll(actor *model.Account, entity string) bool {
	return actor != nil && actor.HasPermission(entity+".view")
}

// FilterList narrows a list query to what the actor may see: the full
// set under the blanket view capability, otherwise only the actor's own
// rows. Results may be served from the resolver's short-lived cache;
// that cache is a best-effort read-through aid only.
func FilterList[T any](
	ctx context.Context,
	r *Resolver,
	actor *model.Account,
	entity string,
	listAll func() ([]T, error),
	listOwned func(ownerID int) ([]T, error),
) ([]T, error) {
	if actor == nil {
		return []T{}, nil
	}

	if r.cache != nil {
		var cached []T
		if r.cache.Get(ctx, entity, actor.ID, &cached) {
			return cached, nil
		}
	}

	var (
		items []T
		err   error
	)
	if r.CanViewAll(actor, entity) {
		items, err = listAll()
	} else {
		items, err = listOwned(actor.ID)
	}
	if err != nil {
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, entity, actor.ID, items); err != nil {
			log.Debug().Err(err).Str("entity", entity).Msg("list cache write failed")
		}
	}
	return items, nil
}

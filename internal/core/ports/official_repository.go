package ports

import (
	"context"

	"github.com/bandobast/zone-monitor/internal/core/domain"
)

// OfficialChange is one change delivered by a live official source.
type OfficialChange struct {
	Official domain.Official
	// Deleted is set when the source removed the document; only Official.ID
	// is meaningful then.
	Deleted bool
}

// OfficialRepository reads official documents from the upstream store.
type OfficialRepository interface {
	List(ctx context.Context) ([]domain.Official, error)
	// Watch blocks delivering changes to fn until ctx is cancelled or the
	// stream fails.
	Watch(ctx context.Context, fn func(OfficialChange)) error
}

package identity

import (
	"context"

	"forge-server-go/internal/docstore"
	"forge-server-go/internal/domain/identity/model"
	platformerrors "forge-server-go/internal/platform/errors"
)

const collectionIdentities = "identities"

// Repository persists identities in the document store, keyed by username.
type Repository struct {
	store docstore.Store
}

// NewRepository wraps the document store for identity access.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Get returns the identity and its storage revision for CAS updates.
func (r *Repository) Get(ctx context.Context, username string) (model.Identity, int64, error) {
	doc, err := r.store.Get(ctx, collectionIdentities, username)
	if err != nil {
		return model.Identity{}, 0, err
	}
	var identity model.Identity
	if err := docstore.Decode(doc, &identity); err != nil {
		return model.Identity{}, 0, platformerrors.Wrap(
			platformerrors.KindStorage, "identity.repo.get", "decode failed", err)
	}
	return identity, doc.Rev, nil
}

// Insert stores a new identity; an existing username is a conflict.
func (r *Repository) Insert(ctx context.Context, identity model.Identity) error {
	data, err := docstore.Encode(identity)
	if err != nil {
		return platformerrors.Wrap(
			platformerrors.KindStorage, "identity.repo.insert", "encode failed", err)
	}
	_, err = r.store.Insert(ctx, collectionIdentities, identity.Username, data)
	return err
}

// Replace rewrites the identity only when the stored revision still matches.
func (r *Repository) Replace(ctx context.Context, identity model.Identity, expectedRev int64) (int64, error) {
	data, err := docstore.Encode(identity)
	if err != nil {
		return 0, platformerrors.Wrap(
			platformerrors.KindStorage, "identity.repo.replace", "encode failed", err)
	}
	doc, err := r.store.ReplaceIf(ctx, collectionIdentities, identity.Username, data, expectedRev)
	if err != nil {
		return 0, err
	}
	return doc.Rev, nil
}

// Rename moves an identity to a new username key. The delete and insert are
// two writes; the insert is attempted first so a crash cannot lose the
// account, only leave a stale duplicate behind.
func (r *Repository) Rename(ctx context.Context, oldUsername string, identity model.Identity) error {
	if err := r.Insert(ctx, identity); err != nil {
		return err
	}
	_, err := r.store.Delete(ctx, collectionIdentities, func(doc docstore.Document) bool {
		return doc.Key == oldUsername
	})
	return err
}

// Delete removes the identity by username, reporting whether it existed.
func (r *Repository) Delete(ctx context.Context, username string) (bool, error) {
	deleted, err := r.store.Delete(ctx, collectionIdentities, func(doc docstore.Document) bool {
		return doc.Key == username
	})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

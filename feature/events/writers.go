package events

import (
	"context"
	"fmt"

	"event-sync/core/reconcile"
	"event-sync/core/remote"
	"event-sync/feature/events/models"
)

// RemoteClient is the subset of the remote API the importer uses.
type RemoteClient interface {
	CategoryLister
	Create(ctx context.Context, collection string, payload any) (string, error)
	Update(ctx context.Context, collection, id string, payload any) error
	Delete(ctx context.Context, collection, id string) error
	FindByName(ctx context.Context, collection, name string) (string, bool, error)
}

// collectionWriter writes one collection and turns field validation errors
// into typed rejections.
type collectionWriter struct {
	client     RemoteClient
	collection string
}

func (w collectionWriter) Create(ctx context.Context, p reconcile.Payload) (reconcile.WriteResult, error) {
	id, err := w.client.Create(ctx, w.collection, p)
	if err != nil {
		return rejection(err)
	}
	return reconcile.Accepted(id), nil
}

func (w collectionWriter) Update(ctx context.Context, remoteID string, p reconcile.Payload) (reconcile.WriteResult, error) {
	if err := w.client.Update(ctx, w.collection, remoteID, p); err != nil {
		return rejection(err)
	}
	return reconcile.Accepted(remoteID), nil
}

func rejection(err error) (reconcile.WriteResult, error) {
	if ve, ok := remote.IsValidation(err); ok && ve.Field != "" {
		return reconcile.FieldRejected(ve.Field, ve.Detail), nil
	}
	return reconcile.WriteResult{}, err
}

// namedWriter adopts an existing remote entity with the same name.
type namedWriter struct {
	collectionWriter
}

func (w namedWriter) Find(ctx context.Context, p reconcile.Payload) (string, bool, error) {
	var name string
	switch v := p.(type) {
	case models.Place:
		name = v.Name
	case models.Organizer:
		name = v.Name
	default:
		return "", false, fmt.Errorf("cannot look up %T by name", p)
	}
	return w.client.FindByName(ctx, w.collection, name)
}

// eventDeleter counts an already missing event as deleted.
type eventDeleter struct {
	client RemoteClient
}

func (d eventDeleter) Delete(ctx context.Context, remoteID string) error {
	err := d.client.Delete(ctx, remote.CollectionEvents, remoteID)
	if remote.IsNotFound(err) {
		return nil
	}
	return err
}

func newWriters(client RemoteClient) map[reconcile.Kind]reconcile.Writer {
	return map[reconcile.Kind]reconcile.Writer{
		reconcile.KindOrganizer: namedWriter{collectionWriter{client: client, collection: remote.CollectionOrganizers}},
		reconcile.KindPlace:     namedWriter{collectionWriter{client: client, collection: remote.CollectionPlaces}},
		reconcile.KindEvent:     collectionWriter{client: client, collection: remote.CollectionEvents},
	}
}

package game

import (
	"context"

	gos3 "stickerhunt/pkg/s3"
)

// S3Objects adapts pkg/s3 to the ObjectStore interface, scoping all
// listings under a fixed bucket prefix. Object names keep the prefix, so
// they feed straight into PublicURL.
type S3Objects struct {
	Client *gos3.Client
	Prefix string
}

func (o S3Objects) List(ctx context.Context, prefix string, limit, offset int) ([]StoredObject, error) {
	objects, err := o.Client.List(ctx, o.Prefix+prefix, limit, offset)
	if err != nil {
		return nil, err
	}

	stored := make([]StoredObject, 0, len(objects))
	for _, obj := range objects {
		stored = append(stored, StoredObject{Name: obj.Name, Size: obj.Size})
	}
	return stored, nil
}

func (o S3Objects) PublicURL(name string) string {
	return o.Client.PublicURL(name)
}

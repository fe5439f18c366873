package storage

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"cdox/internal/model"
)

// DefaultURLExpiry is used when a Resolver is built without an expiry.
const DefaultURLExpiry = 15 * time.Minute

// Resolver turns file references into size, mime type and download URL.
// With a public base URL the link is stable; otherwise it is a presigned GET.
type Resolver struct {
	store      Storage
	expiry     time.Duration
	publicBase string
}

var _ model.FileResolver = (*Resolver)(nil)

// NewResolver creates a Resolver. An empty publicBase selects presigned URLs.
func NewResolver(store Storage, expiry time.Duration, publicBase string) *Resolver {
	if expiry <= 0 {
		expiry = DefaultURLExpiry
	}
	return &Resolver{store: store, expiry: expiry, publicBase: strings.TrimRight(publicBase, "/")}
}

// Resolve stats the object and builds its URL. Every failure is a *ResolutionError.
func (r *Resolver) Resolve(ctx context.Context, ref string) (model.FileInfo, error) {
	key := strings.TrimLeft(ref, "/")
	if key == "" {
		return model.FileInfo{}, &ResolutionError{Ref: ref, Err: errors.New("empty key")}
	}

	info, err := r.store.Stat(ctx, key)
	if err != nil {
		return model.FileInfo{}, &ResolutionError{Ref: ref, Err: err}
	}

	link, err := r.link(ctx, key)
	if err != nil {
		return model.FileInfo{}, &ResolutionError{Ref: ref, Err: err}
	}

	return model.FileInfo{Size: info.Size, ContentType: info.ContentType, URL: link}, nil
}

// Link builds the download URL of ref without a Stat round trip.
func (r *Resolver) Link(ctx context.Context, ref string) (string, error) {
	key := strings.TrimLeft(ref, "/")
	if key == "" {
		return "", &ResolutionError{Ref: ref, Err: errors.New("empty key")}
	}
	link, err := r.link(ctx, key)
	if err != nil {
		return "", &ResolutionError{Ref: ref, Err: err}
	}
	return link, nil
}

func (r *Resolver) link(ctx context.Context, key string) (string, error) {
	if r.publicBase == "" {
		return r.store.PresignGet(ctx, key, r.expiry)
	}
	return url.JoinPath(r.publicBase, key)
}

// Package storage holds uploaded media: recipe and step images/videos under
// randomized paths, avatars under one fixed path per user.
package storage

import (
	"context"
	"errors"
	"io"
)

const (
	BucketAvatars     = "avatars"
	BucketRecipeMedia = "recipe-media"
)

var (
	ErrObjectExists = errors.New("object already exists")
	ErrInvalidPath  = errors.New("invalid object path")
)

type Store interface {
	// Save writes the object and returns its public URL. With upsert false,
	// an existing object at the same path is an ErrObjectExists.
	Save(ctx context.Context, bucket, path string, r io.Reader, upsert bool) (string, error)
	Remove(ctx context.Context, bucket, path string) error
}

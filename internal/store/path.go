package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Join builds a path from segments, e.g. Join("boards", "b1", "statuses").
func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Parent splits a collection path into its parent document.
// ok is false for root collections.
func Parent(collection string) (parentCollection, parentID string, ok bool) {
	segs := strings.Split(collection, "/")
	if len(segs) < 3 {
		return "", "", false
	}
	return strings.Join(segs[:len(segs)-2], "/"), segs[len(segs)-2], true
}

// ValidCollection reports whether collection is a well formed collection path:
// an odd number of non-empty segments.
func ValidCollection(collection string) bool {
	if collection == "" {
		return false
	}
	segs := strings.Split(collection, "/")
	if len(segs)%2 == 0 {
		return false
	}
	for _, s := range segs {
		if s == "" {
			return false
		}
	}
	return true
}

// CollectionExists reports whether the parent document of collection exists.
// Root collections always exist.
func CollectionExists(ctx context.Context, r Reader, collection string) (bool, error) {
	if !ValidCollection(collection) {
		return false, nil
	}
	parentCollection, parentID, ok := Parent(collection)
	if !ok {
		return true, nil
	}
	if _, err := r.Get(ctx, parentCollection, parentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up %s/%s: %w", parentCollection, parentID, err)
	}
	return true, nil
}

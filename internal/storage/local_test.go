package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLocalSaveAndOverwrite(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	ctx := context.Background()

	url, err := store.Save(ctx, BucketAvatars, "u1.jpg", strings.NewReader("first"), true)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if url != "/static/avatars/u1.jpg" {
		t.Errorf("url = %q", url)
	}

	// Avatars upsert; recipe media must not.
	if _, err := store.Save(ctx, BucketAvatars, "u1.jpg", strings.NewReader("second"), true); err != nil {
		t.Errorf("upsert save: %v", err)
	}
	if _, err := store.Save(ctx, BucketRecipeMedia, "clip.mp4", strings.NewReader("a"), false); err != nil {
		t.Fatalf("media save: %v", err)
	}
	_, err = store.Save(ctx, BucketRecipeMedia, "clip.mp4", strings.NewReader("b"), false)
	if !errors.Is(err, ErrObjectExists) {
		t.Errorf("err = %v, want ErrObjectExists", err)
	}
}

func TestLocalRejectsTraversal(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}

	for _, path := range []string{"../escape.txt", "/abs.txt", ""} {
		if _, err := store.Save(context.Background(), BucketAvatars, path, strings.NewReader("x"), true); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("Save(%q) err = %v, want ErrInvalidPath", path, err)
		}
	}
}

func TestLocalRemoveMissingIsNoop(t *testing.T) {
	store, err := NewLocal(t.TempDir(), "/static")
	if err != nil {
		t.Fatalf("new local: %v", err)
	}
	if err := store.Remove(context.Background(), BucketAvatars, "missing.jpg"); err != nil {
		t.Errorf("remove missing: %v", err)
	}
}

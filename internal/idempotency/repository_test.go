package idempotency

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestValidateKey(t *testing.T) {
	if err := ValidateKey(""); !errors.Is(err, ErrInvalidKey) {
		t.Errorf("Empty key: expected ErrInvalidKey, got %v", err)
	}
	if err := ValidateKey(strings.Repeat("k", MaxKeyLength+1)); !errors.Is(err, ErrKeyTooLong) {
		t.Errorf("Long key: expected ErrKeyTooLong, got %v", err)
	}
	if err := ValidateKey("valid-key-123"); err != nil {
		t.Errorf("Valid key failed: %v", err)
	}
}

func TestInMemoryRepository_StoreAndGet(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	record := &IdempotencyKey{
		Key:                "key-1",
		Method:             "POST",
		Route:              "/scores",
		ResponseHash:       ComputeResponseHash(`{"ok":true}`),
		Status:             StatusCompleted,
		ResponseBody:       `{"ok":true}`,
		ResponseStatusCode: 201,
	}
	if err := repo.Store(ctx, record); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if record.CreatedAt.IsZero() {
		t.Error("Expected CreatedAt to be set")
	}

	got, err := repo.Get(ctx, "key-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.ResponseBody != `{"ok":true}` || got.ResponseStatusCode != 201 {
		t.Errorf("Unexpected record: %+v", got)
	}
}

func TestInMemoryRepository_GetMissing(t *testing.T) {
	repo := NewInMemoryRepository()
	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}

func TestInMemoryRepository_DuplicateKey(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	record := &IdempotencyKey{Key: "dup", Status: StatusCompleted}
	if err := repo.Store(ctx, record); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	err := repo.Store(ctx, &IdempotencyKey{Key: "dup", Status: StatusCompleted})
	if !errors.Is(err, ErrKeyExists) {
		t.Errorf("Expected ErrKeyExists, got %v", err)
	}
}

func TestInMemoryRepository_DeleteOlderThan(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	old := &IdempotencyKey{
		Key:       "old",
		Status:    StatusCompleted,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	fresh := &IdempotencyKey{Key: "fresh", Status: StatusCompleted}
	for _, rec := range []*IdempotencyKey{old, fresh} {
		if err := repo.Store(ctx, rec); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	deleted, err := repo.DeleteOlderThan(ctx, DefaultExpiry)
	if err != nil {
		t.Fatalf("DeleteOlderThan failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 deleted, got %d", deleted)
	}
	if _, err := repo.Get(ctx, "old"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected old key gone, got %v", err)
	}
	if _, err := repo.Get(ctx, "fresh"); err != nil {
		t.Errorf("Expected fresh key kept, got %v", err)
	}
}

func TestComputeResponseHash_Deterministic(t *testing.T) {
	a := ComputeResponseHash(`{"a":1}`)
	b := ComputeResponseHash(`{"a":1}`)
	c := ComputeResponseHash(`{"a":2}`)
	if a != b {
		t.Error("Expected identical hashes for identical bodies")
	}
	if a == c {
		t.Error("Expected different hashes for different bodies")
	}
}

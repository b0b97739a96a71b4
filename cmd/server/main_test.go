package main

import (
	"context"
	"testing"

	"github.com/cajaflow/caja/internal/infrastructure/config"
)

func TestBuildReceiptStorage_DisabledWithoutBucket(t *testing.T) {
	storage, err := buildReceiptStorage(context.Background(), &config.Config{})
	if err != nil {
		t.Fatalf("expected no error without a bucket, got %v", err)
	}

	if _, err := storage.Store(context.Background(), "receipts/x.jpg", []byte("data"), "image/jpeg"); err == nil {
		t.Fatal("expected disabled storage to reject uploads")
	}
}

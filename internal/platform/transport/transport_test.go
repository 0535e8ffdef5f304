package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/immbridge/immbridge/internal/platform/secrets"
)

func TestMemoryDeliverer(t *testing.T) {
	d := NewMemoryDeliverer()
	if err := d.Deliver(context.Background(), "a.hl7", []byte("MSH|")); err != nil {
		t.Fatalf("Deliver: %v", err)
	}
	body, ok := d.Delivered("a.hl7")
	if !ok || string(body) != "MSH|" {
		t.Errorf("Delivered = %q, %v", body, ok)
	}
	if d.Count() != 1 {
		t.Errorf("Count = %d, want 1", d.Count())
	}
}

func TestMemoryDelivererFail(t *testing.T) {
	d := NewMemoryDeliverer()
	d.Fail = errors.New("boom")
	if err := d.Deliver(context.Background(), "a.hl7", nil); err == nil {
		t.Fatal("expected configured failure, got nil")
	}
	if d.Count() != 0 {
		t.Errorf("failed delivery must not be recorded")
	}
}

func TestSFTPDelivererDefaults(t *testing.T) {
	d := NewSFTPDeliverer(SFTPConfig{Host: "registry.example.org"}, &secrets.StaticStore{}, zerolog.Nop())
	if d.cfg.Port != 22 {
		t.Errorf("default port = %d, want 22", d.cfg.Port)
	}
	if d.cfg.HostKeyCallback == nil {
		t.Error("default host key callback not set")
	}
	if d.cfg.DialTimeout != 30*time.Second {
		t.Errorf("default dial timeout = %v", d.cfg.DialTimeout)
	}
}

func TestSFTPDelivererCancelledContext(t *testing.T) {
	d := NewSFTPDeliverer(SFTPConfig{Host: "registry.example.org"}, &secrets.StaticStore{}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := d.Deliver(ctx, "a.hl7", nil); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

package container

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"pricing-detective/internal/config"
)

func TestContainerWiresPinnedDeviceID(t *testing.T) {
	devices := make(chan string, 1)
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		devices <- r.Header.Get("X-Device-Id")
		fmt.Fprint(w, `{"used":0,"remaining":3,"limit":3}`)
	}))
	defer upstream.Close()

	cfg := config.Default()
	cfg.Backend.BaseURL = upstream.URL
	cfg.Identity.DeviceID = "pinned-device"
	cfg.Session.Language = "fr-CA"

	c := New(cfg, zap.NewNop())

	id, err := c.Identity().DeviceID(context.Background())
	if err != nil || id != "pinned-device" {
		t.Fatalf("DeviceID() = %q, %v", id, err)
	}

	snap, err := c.Engine().LoadTrialStatus(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got := <-devices; got != "pinned-device" {
		t.Errorf("X-Device-Id = %q", got)
	}
	if snap.Trial == nil || snap.Trial.Remaining != 3 {
		t.Errorf("trial = %+v", snap.Trial)
	}
	if snap.Language != "fr" {
		t.Errorf("language = %q, want fr", snap.Language)
	}
	if c.Server("test") == nil || c.Config() != cfg {
		t.Error("unexpected container accessors")
	}
}

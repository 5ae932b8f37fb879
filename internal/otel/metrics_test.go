package otel

import (
	"context"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecord_beforeInitIsNoop(t *testing.T) {
	ctx := context.Background()
	RecordSetup(ctx, "dev", true, false, time.Second)
	RecordPanesCreated(ctx, "dev", 3)
	RecordMessage(ctx, "bob", false)
	RecordSessionStart(ctx, true, time.Second)
}

func TestInitMetrics_exportsSquadMetrics(t *testing.T) {
	ctx := context.Background()
	handler, err := InitMeterProvider(ctx, "metrics-test")
	if err != nil {
		t.Fatalf("InitMeterProvider: %v", err)
	}
	if err := InitMetrics(ctx); err != nil {
		t.Fatalf("InitMetrics: %v", err)
	}
	if err := InitMetrics(ctx); err != nil {
		t.Fatalf("InitMetrics twice: %v", err)
	}
	RecordSetup(ctx, "dev", true, false, 150*time.Millisecond)
	RecordPanesCreated(ctx, "dev", 3)
	RecordMessage(ctx, "bob", true)
	RecordSessionStart(ctx, true, 2*time.Second)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	for _, name := range []string{"squad_setups_total", "squad_panes_created_total", "squad_messages_total", "squad_session_starts_total"} {
		if !strings.Contains(string(body), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}

	again, err := InitMeterProvider(ctx, "metrics-test")
	if err != nil || again != handler {
		t.Errorf("second InitMeterProvider returned a different handler (err %v)", err)
	}

	path := filepath.Join(t.TempDir(), "squad.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "squad_setups_total") {
		t.Errorf("textfile missing squad_setups_total:\n%s", data)
	}
}

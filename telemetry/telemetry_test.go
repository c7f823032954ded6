package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/freekieb7/rawhttp/filesystem"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"INFO":  slog.LevelInfo,
		"warn":  slog.LevelWarn,
		"error": slog.LevelError,
	}

	for input, expected := range testCases {
		level, err := ParseLevel(input)
		if err != nil {
			t.Errorf("ParseLevel(%q): %v", input, err)
		}
		if level != expected {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, level, expected)
		}
	}

	if _, err := ParseLevel("loud"); err == nil {
		t.Error("expected an error for an unknown level")
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("test", &buf, slog.LevelInfo, false)

	logger.Debug("hidden")
	logger.With("component", "http").Info("shown", "status", 200)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug record written at info level: %s", out)
	}
	for _, want := range []string{`"msg":"shown"`, `"component":"http"`, `"status":200`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}

func TestRotatingFile(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenRotatingFile(filesystem.NewLocalFileSystem(), filepath.Join(dir, "logs"), DefaultLogFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if _, err := f.Write([]byte("day one\n")); err != nil {
		t.Fatal(err)
	}

	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	archive, err := f.Rotate(now)
	if err != nil {
		t.Fatal(err)
	}
	if archive != f.Path()+".2024-03-01" {
		t.Errorf("unexpected archive name %s", archive)
	}

	if _, err := f.Write([]byte("day two\n")); err != nil {
		t.Fatal(err)
	}

	second, err := f.Rotate(now)
	if err != nil {
		t.Fatal(err)
	}
	if second != archive+".1" {
		t.Errorf("expected a numbered archive, got %s", second)
	}

	for path, expected := range map[string]string{archive: "day one\n", second: "day two\n", f.Path(): ""} {
		content, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if string(content) != expected {
			t.Errorf("%s: expected %q, got %q", path, expected, content)
		}
	}

	f.Close()
	if _, err := f.Write([]byte("late")); err == nil {
		t.Error("write after Close should fail")
	}
}

func TestRotationJob(t *testing.T) {
	f, err := OpenRotatingFile(filesystem.NewLocalFileSystem(), t.TempDir(), DefaultLogFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	job := RotationJob(f, RotationInterval)
	if job.Name() != "log-rotation" {
		t.Errorf("unexpected job name %s", job.Name())
	}
}

func TestMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(ctx)

	metrics, err := NewMetrics(provider.Meter("test"))
	if err != nil {
		t.Fatal(err)
	}

	metrics.RecordRequest(ctx, "GET", 200, 10*time.Millisecond)
	metrics.RecordRequest(ctx, "GET", 404, time.Millisecond)
	metrics.ConnectionOpened(ctx)
	metrics.ConnectionOpened(ctx)
	metrics.ConnectionClosed(ctx)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatal(err)
	}

	found := map[string]bool{}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			found[m.Name] = true

			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				var total int64
				for _, dp := range data.DataPoints {
					total += dp.Value
				}
				if m.Name == "http.server.requests" && total != 2 {
					t.Errorf("expected 2 requests, got %d", total)
				}
				if m.Name == "http.server.active_connections" && total != 1 {
					t.Errorf("expected 1 active connection, got %d", total)
				}
			case metricdata.Histogram[float64]:
				var count uint64
				for _, dp := range data.DataPoints {
					count += dp.Count
				}
				if count != 2 {
					t.Errorf("expected 2 duration samples, got %d", count)
				}
			}
		}
	}

	for _, name := range []string{"http.server.requests", "http.server.request.duration", "http.server.active_connections"} {
		if !found[name] {
			t.Errorf("metric %s not collected", name)
		}
	}

	var nilMetrics *Metrics
	nilMetrics.RecordRequest(ctx, "GET", 200, time.Second)
}

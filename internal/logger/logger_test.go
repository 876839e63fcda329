package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
)

// Property: production logs are single-line JSON carrying level, timestamp and message
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every entry decodes as JSON with the core keys", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			log := NewForWriter(envProduction, &buf)

			switch level {
			case "info":
				log.Info(message)
			case "warn":
				log.Warn(message)
			default:
				log.Error(message)
			}
			_ = log.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			for _, key := range []string{"level", "timestamp", "message", "service"} {
				if _, ok := entry[key]; !ok {
					return false
				}
			}
			return entry["message"] == message && entry["level"] == level
		},
		gen.AnyString(),
		gen.OneConstOf("info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Property: structured fields survive encoding untouched
func TestProperty_FieldsAreKept(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("sale number and stock fields are emitted as keys", prop.ForAll(
		func(saleNumber string, stock int) bool {
			var buf bytes.Buffer
			log := NewForWriter(envProduction, &buf)
			log.Info("sale committed", zap.String("sale_number", saleNumber), zap.Int("stock", stock))
			_ = log.Sync()

			var entry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				return false
			}
			return entry["sale_number"] == saleNumber && entry["stock"] == float64(stock)
		},
		gen.AlphaString(),
		gen.IntRange(0, 100000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDevelopmentWriterIsConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewForWriter("development", &buf)
	log.Debug("stock adjusted")
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "DEBUG") || !strings.Contains(out, "stock adjusted") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if json.Valid(bytes.TrimSpace(buf.Bytes())) {
		t.Fatal("development output should not be JSON")
	}
}

func TestNewProduction(t *testing.T) {
	log, err := New(envProduction)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	defer log.Sync()

	if log == nil {
		t.Fatal("Logger should not be nil")
	}
}

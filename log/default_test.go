package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDefault_PackageFunctions(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { SetDefault(saved) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithLevel(LevelTrace), WithFormat(FormatJSON)))

	ctx := context.Background()

	tests := []struct {
		name  string
		log   func(string, ...slog.Attr)
		level string
	}{
		{"Trace", func(m string, a ...slog.Attr) { TraceContext(ctx, m, a...) }, `"TRACE"`},
		{"Debug", Debug, `"DEBUG"`},
		{"Info", Info, `"INFO"`},
		{"Warn", Warn, `"WARN"`},
		{"Error", Error, `"ERROR"`},
		{"InfoContext", func(m string, a ...slog.Attr) { InfoContext(ctx, m, a...) }, `"INFO"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log("package message", slog.String("key", "value"))

			out := buf.String()
			for _, want := range []string{"package message", tt.level, `"key":"value"`} {
				if !strings.Contains(out, want) {
					t.Errorf("output %q does not contain %s", out, want)
				}
			}
		})
	}
}

func TestDefault_Config(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { SetDefault(saved) })

	var buf bytes.Buffer

	Config(WithOutput(&buf), WithLevel(LevelWarn))

	Info("dropped")
	With(slog.String("pkg", "lit")).Warn("kept")

	if out := buf.String(); strings.Contains(out, "dropped") || !strings.Contains(out, "pkg=lit") {
		t.Errorf("output = %q", out)
	}
}

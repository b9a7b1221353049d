package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		" warn ":  zerolog.WarnLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestInitOnceAndReset(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() {
		Reset()
		zerolog.SetGlobalLevel(prev)
	})
	Reset()

	var first, second bytes.Buffer
	Init(Options{Level: "info", Output: &first, Service: "dorm-api"})
	Init(Options{Level: "debug", Output: &second})

	log := Get()
	log.Info().Str("k", "v").Msg("hello")
	log.Debug().Msg("dropped")

	if second.Len() != 0 {
		t.Fatalf("second Init must not take effect, got %q", second.String())
	}
	var line map[string]any
	if err := json.Unmarshal(first.Bytes(), &line); err != nil {
		t.Fatalf("want exactly one JSON line, got %q: %v", first.String(), err)
	}
	if line["service"] != "dorm-api" || line["k"] != "v" || line["message"] != "hello" {
		t.Fatalf("unexpected line %v", line)
	}

	Reset()
	defer func() {
		if recover() == nil {
			t.Fatal("Get after Reset must panic")
		}
	}()
	Get()
}

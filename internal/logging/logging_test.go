package logging

import (
	"bytes"
	"log/slog"
	"testing"
)

func TestSet_ReplacesTheGlobalLogger(t *testing.T) {
	orig := L()
	defer Set(orig)

	var buf bytes.Buffer
	Set(slog.New(slog.NewTextHandler(&buf, nil)))
	L().Info("hello")
	if buf.Len() == 0 {
		t.Fatalf("L() did not use the logger installed by Set")
	}
}

func TestSet_IgnoresNil(t *testing.T) {
	orig := L()
	defer Set(orig)
	Set(nil)
	if L() != orig {
		t.Fatalf("Set(nil) replaced the global logger")
	}
}

func TestNew_JSONVsTextFormat(t *testing.T) {
	var jsonBuf, textBuf bytes.Buffer
	New("json", slog.LevelInfo, &jsonBuf).Info("hi")
	New("text", slog.LevelInfo, &textBuf).Info("hi")

	if jsonBuf.Len() == 0 || textBuf.Len() == 0 {
		t.Fatalf("New() logger did not write any output")
	}
	if jsonBuf.String()[0] != '{' {
		t.Fatalf("json format logger did not emit a JSON object: %q", jsonBuf.String())
	}
}

func TestDiscard_DropsOutput(t *testing.T) {
	l := Discard()
	l.Info("this should go nowhere")
}

package app

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/gamehive/gamehive/internal/client/flow"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestPromptLine(t *testing.T) {
	var out bytes.Buffer
	got, err := promptLine(rdr("  hello world \n"), &out, "Name")
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
	if !strings.Contains(out.String(), "Name: ") {
		t.Fatalf("prompt not written: %q", out.String())
	}
}

func TestPromptLineEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := promptLine(rdr("lastline"), &out, "Name")
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestEnterCode(t *testing.T) {
	accept := func(int, string) bool { return true }

	if enterCode(accept, "12345") {
		t.Fatal("short line accepted")
	}
	if enterCode(accept, "1234567") {
		t.Fatal("long line accepted")
	}

	var typed []string
	record := func(i int, v string) bool {
		typed = append(typed, v)
		return v >= "0" && v <= "9"
	}
	if !enterCode(record, "123456") {
		t.Fatal("valid code rejected")
	}
	if len(typed) != flow.CodeLength {
		t.Fatalf("typed %d digits, want %d", len(typed), flow.CodeLength)
	}
	if enterCode(record, "12a456") {
		t.Fatal("non-digit accepted")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("GAMEHIVE_SERVICE_URL", "")
	t.Setenv("GAMEHIVE_HTTP_TIMEOUT", "")

	cfg := LoadConfig()
	if cfg.ServiceURL != "http://localhost:3000" {
		t.Fatalf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.SessionFile == "" {
		t.Fatal("SessionFile empty")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("GAMEHIVE_SERVICE_URL", "https://api.gamehive.example")
	t.Setenv("GAMEHIVE_HTTP_TIMEOUT", "3s")

	cfg := LoadConfig()
	if cfg.ServiceURL != "https://api.gamehive.example" {
		t.Fatalf("ServiceURL = %q", cfg.ServiceURL)
	}
	if cfg.HTTPTimeout.Seconds() != 3 {
		t.Fatalf("HTTPTimeout = %v", cfg.HTTPTimeout)
	}
}

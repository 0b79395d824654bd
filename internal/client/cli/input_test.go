package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPairingCode(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	buf := []byte("  the-code  ")
	readPassword = func(int) ([]byte, error) {
		return buf, nil
	}
	var out bytes.Buffer
	got, err := GetPairingCode(&out)
	if err != nil || got != "the-code" {
		t.Fatalf("got %q, err=%v", got, err)
	}

	// The raw buffer got wiped after the copy.
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("buffer not wiped at %d: %v", i, buf)
		}
	}
}

func TestGetPairingCode_Error(t *testing.T) {
	old := readPassword
	defer func() { readPassword = old }()
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}
	var out bytes.Buffer
	_, err := GetPairingCode(&out)
	if err == nil {
		t.Fatal("expected error")
	}
}

package pdftext

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/joseph-ayodele/race-results/internal/runner"
)

func TestLayoutBackendExtract(t *testing.T) {
	stub := &runner.Stub{Handler: func(name string, args []string) ([]byte, []byte, error) {
		return []byte("Posiciones\r\n1   12   Juan Perez   30  \n\fpage two\n"), nil, nil
	}}
	b := NewLayoutBackend("/usr/bin/pdftotext", 0, stub, nil)

	out, err := b.Extract(context.Background(), "fecha.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(stub.Calls) != 1 || stub.Calls[0].Name != "/usr/bin/pdftotext" {
		t.Fatalf("calls = %+v", stub.Calls)
	}
	args := strings.Join(stub.Calls[0].Args, " ")
	if args != "-layout -enc UTF-8 -eol unix fecha.pdf -" {
		t.Errorf("args = %q", args)
	}
	if !strings.Contains(out.Text, "1   12   Juan Perez   30\n") {
		t.Errorf("layout spacing not preserved: %q", out.Text)
	}
	if out.Pages != 2 {
		t.Errorf("pages = %d, want 2", out.Pages)
	}
}

func TestLayoutBackendFailure(t *testing.T) {
	stub := &runner.Stub{Handler: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1")
	}}
	_, err := NewLayoutBackend("", 0, stub, nil).Extract(context.Background(), "broken.pdf")
	if err == nil || !strings.Contains(err.Error(), "trailer") {
		t.Fatalf("err = %v", err)
	}
}

func TestNormalizeLayout(t *testing.T) {
	in := "Go\u0301mez A\t B  \r\n\n\n\n end"
	got := NormalizeLayout(in)
	want := "G\u00f3mez A     B\n\n end"
	if got != want {
		t.Errorf("NormalizeLayout = %q, want %q", got, want)
	}
}

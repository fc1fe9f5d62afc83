package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"mouse-overlay/src/singleinstance"
)

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--config", "/tmp/overlay.json", "-v"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.configPath != "/tmp/overlay.json" {
		t.Errorf("Expected configPath=/tmp/overlay.json, got %q", opts.configPath)
	}
	if !opts.verbose {
		t.Error("Expected verbose=true")
	}
}

func TestRootCmdHasSubcommands(t *testing.T) {
	cmd := newRootCmd(&mainOptions{})
	for _, name := range []string{"panel", "ctl"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub.Name() != name {
			t.Errorf("subcommand %q not found: %v", name, err)
		}
	}
}

func TestCtlRequiresArgument(t *testing.T) {
	if err := runWithArgs([]string{"mouse-overlay", "ctl"}); err == nil {
		t.Error("Expected error for ctl without a command")
	}
}

func TestRootRejectsPositionalArgs(t *testing.T) {
	if err := runWithArgs([]string{"mouse-overlay", "extra"}); err == nil {
		t.Error("Expected error for unexpected argument")
	}
}

type fakeClient struct {
	got   singleinstance.Command
	reply string
	err   error
}

func (f *fakeClient) Send(ctx context.Context, cmd singleinstance.Command) (string, error) {
	f.got = cmd
	return f.reply, f.err
}

func TestRunCtl(t *testing.T) {
	client := &fakeClient{reply: "cursor_tail off"}
	var out bytes.Buffer
	if err := runCtl(context.Background(), client, []string{"toggle", "cursor_tail"}, &out); err != nil {
		t.Fatalf("runCtl: %v", err)
	}
	want := singleinstance.Command{Verb: singleinstance.VerbToggle, Arg: "cursor_tail"}
	if diff := cmp.Diff(want, client.got); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
	if out.String() != "cursor_tail off\n" {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunCtlNoResident(t *testing.T) {
	client := &fakeClient{err: singleinstance.ErrNoResident}
	err := runCtl(context.Background(), client, []string{"quit"}, &bytes.Buffer{})
	if !errors.Is(err, singleinstance.ErrNoResident) {
		t.Errorf("Expected ErrNoResident, got %v", err)
	}
}

func TestRunCtlRejectsUnknownVerb(t *testing.T) {
	client := &fakeClient{}
	if err := runCtl(context.Background(), client, []string{"dance"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for unknown command")
	}
	if client.got.Verb != "" {
		t.Error("Unknown command was sent to the resident")
	}
}

func TestPanelArgs(t *testing.T) {
	want := []string{"panel", "--config", "/x/config.json"}
	if diff := cmp.Diff(want, panelArgs("/x/config.json")); diff != "" {
		t.Errorf("panel args mismatch (-want +got):\n%s", diff)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "  ", "b", "c"); got != "b" {
		t.Errorf("firstNonEmpty = %q, want b", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("firstNonEmpty() = %q, want empty", got)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

type mockExecutor struct {
	availableBins map[string]bool // binary -> LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> RunSilent succeeds
	runPipedFunc  func(name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) RunSilent(_ context.Context, name string, args ...string) error {
	key := name + " " + strings.Join(args, " ")
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
}

func (m *mockExecutor) RunPiped(_ context.Context, name string, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if m.runPipedFunc != nil {
		return m.runPipedFunc(name, args, stdin, stdout, stderr)
	}
	return nil
}

func TestDetectRuntime(t *testing.T) {
	tests := []struct {
		name     string
		exec     *mockExecutor
		wantName string
		wantErr  bool
	}{
		{
			name: "docker available",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true},
				runnableCmds:  map[string]bool{"docker info": true},
			},
			wantName: "docker",
		},
		{
			name: "podman fallback",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name:    "neither available",
			exec:    &mockExecutor{},
			wantErr: true,
		},
		{
			name: "docker info fails",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := detectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rt.Name() != tt.wantName {
				t.Errorf("got runtime %q, want %q", rt.Name(), tt.wantName)
			}
		})
	}
}

func TestImageExists(t *testing.T) {
	ctx := context.Background()
	docker := newDockerRuntime(&mockExecutor{runnableCmds: map[string]bool{"docker image inspect markitdown:latest": true}})
	if err := docker.ImageExists(ctx, "markitdown:latest"); err != nil {
		t.Errorf("docker image should exist: %v", err)
	}

	podman := newPodmanRuntime(&mockExecutor{})
	err := podman.ImageExists(ctx, "markitdown:latest")
	if err == nil {
		t.Fatal("expected error for missing podman image")
	}
	if !strings.Contains(err.Error(), "markitdown:latest") {
		t.Errorf("error should mention image, got: %v", err)
	}
}

func TestRun(t *testing.T) {
	var gotArgs []string
	rt := newDockerRuntime(&mockExecutor{
		runPipedFunc: func(name string, args []string, stdin io.Reader, stdout, _ io.Writer) error {
			gotArgs = args
			data, _ := io.ReadAll(stdin)
			_, _ = stdout.Write([]byte("converted: " + string(data)))
			return nil
		},
	})

	var out bytes.Buffer
	if err := rt.Run(context.Background(), "markitdown:latest", strings.NewReader("pdf bytes"), &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "converted: pdf bytes" {
		t.Errorf("got output %q", out.String())
	}
	if strings.Join(gotArgs, " ") != "run --rm -i --network none markitdown:latest" {
		t.Errorf("unexpected args %v", gotArgs)
	}
}

func TestRunIncludesStderr(t *testing.T) {
	rt := newPodmanRuntime(&mockExecutor{
		runPipedFunc: func(_ string, _ []string, _ io.Reader, _, stderr io.Writer) error {
			_, _ = stderr.Write([]byte("  bad pdf header\n"))
			return errors.New("exit status 1")
		},
	})

	err := rt.Run(context.Background(), "markitdown:latest", strings.NewReader(""), io.Discard)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.HasSuffix(err.Error(), ": bad pdf header") {
		t.Errorf("stderr not quoted: %v", err)
	}
}

func TestTail(t *testing.T) {
	long := strings.Repeat("x", maxStderr+10)
	got := tail(long)
	if len(got) != maxStderr+3 || !strings.HasPrefix(got, "...") {
		t.Errorf("tail length %d", len(got))
	}
	if tail("  short \n") != "short" {
		t.Errorf("tail should trim")
	}
}

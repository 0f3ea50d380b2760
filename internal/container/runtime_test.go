// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package container

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/pdiddy/paperdrop/internal/command"
)

// mockExecutor records calls and returns configured responses.
type mockExecutor struct {
	availableBins map[string]bool // binary -> whether LookPath succeeds
	runnableCmds  map[string]bool // "bin arg1 arg2" -> whether Run succeeds
	calls         []string
}

func (m *mockExecutor) LookPath(file string) (string, error) {
	if m.availableBins[file] {
		return "/usr/bin/" + file, nil
	}
	return "", errors.New("not found: " + file)
}

func (m *mockExecutor) Run(_ context.Context, c command.Cmd) error {
	key := c.String()
	m.calls = append(m.calls, key)
	if m.runnableCmds[key] {
		return nil
	}
	return errors.New("command failed: " + key)
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
			name: "podman fallback when docker missing",
			exec: &mockExecutor{
				availableBins: map[string]bool{"podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "neither available",
			exec: &mockExecutor{
				availableBins: map[string]bool{},
				runnableCmds:  map[string]bool{},
			},
			wantErr: true,
		},
		{
			name: "docker on PATH but info fails, podman works",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"podman info": true},
			},
			wantName: "podman",
		},
		{
			name: "both available, docker preferred",
			exec: &mockExecutor{
				availableBins: map[string]bool{"docker": true, "podman": true},
				runnableCmds:  map[string]bool{"docker info": true, "podman info": true},
			},
			wantName: "docker",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt, err := DetectRuntime(context.Background(), tt.exec)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), "no container runtime available") {
					t.Errorf("error should mention no runtime available, got: %v", err)
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
	tests := []struct {
		name    string
		mkRT    func(*mockExecutor) Runtime
		cmds    map[string]bool
		wantErr bool
	}{
		{
			name: "docker image exists",
			mkRT: func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			cmds: map[string]bool{"docker image inspect pandoc/latex:3.5": true},
		},
		{
			name:    "docker image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newDockerRuntime(e) },
			cmds:    map[string]bool{},
			wantErr: true,
		},
		{
			name: "podman image exists",
			mkRT: func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			cmds: map[string]bool{"podman image exists pandoc/latex:3.5": true},
		},
		{
			name:    "podman image not found",
			mkRT:    func(e *mockExecutor) Runtime { return newPodmanRuntime(e) },
			cmds:    map[string]bool{},
			wantErr: true,
		},
	}
	const image = "pandoc/latex:3.5"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &mockExecutor{runnableCmds: tt.cmds}
			rt := tt.mkRT(exec)
			err := rt.ImageExists(context.Background(), image)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), image) {
					t.Errorf("error should mention image name, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestRun(t *testing.T) {
	spec := RunSpec{
		Image:   "pandoc/latex:3.5",
		Mounts:  []Mount{{Host: "/tmp/papers/2308.06721", Container: "/data"}},
		WorkDir: "/data/latex_extracted",
		Args:    []string{"main.tex", "-o", "../2308.06721.epub"},
	}
	want := "docker run --rm -v /tmp/papers/2308.06721:/data -w /data/latex_extracted pandoc/latex:3.5 main.tex -o ../2308.06721.epub"

	t.Run("builds the run command line", func(t *testing.T) {
		exec := &mockExecutor{runnableCmds: map[string]bool{want: true}}
		rt := newDockerRuntime(exec)
		if err := rt.Run(context.Background(), spec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(exec.calls) != 1 || exec.calls[0] != want {
			t.Errorf("calls = %v, want [%s]", exec.calls, want)
		}
	})

	t.Run("run failure returns wrapped error", func(t *testing.T) {
		exec := &mockExecutor{runnableCmds: map[string]bool{}}
		rt := newPodmanRuntime(exec)
		err := rt.Run(context.Background(), spec)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "running podman container pandoc/latex:3.5") {
			t.Errorf("unexpected error text: %v", err)
		}
	})
}

func TestRuntimeName(t *testing.T) {
	exec := &mockExecutor{}
	docker := newDockerRuntime(exec)
	if docker.Name() != "docker" {
		t.Errorf("docker runtime name = %q, want %q", docker.Name(), "docker")
	}
	podman := newPodmanRuntime(exec)
	if podman.Name() != "podman" {
		t.Errorf("podman runtime name = %q, want %q", podman.Name(), "podman")
	}
}

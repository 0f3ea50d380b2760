// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package container detects a container runtime (docker or podman) and runs
// tool images against a mounted host directory.
package container

import (
	"context"
	"fmt"

	"github.com/pdiddy/paperdrop/internal/command"
)

const (
	binDocker = "docker"
	binPodman = "podman"
)

// Mount binds a host directory into the container.
type Mount struct {
	Host      string
	Container string
}

// RunSpec describes a single container invocation.
type RunSpec struct {
	Image   string
	Mounts  []Mount
	WorkDir string
	Args    []string
}

// Runtime provides container operations: checking availability, verifying
// images, and running containers.
type Runtime interface {
	// Name returns the runtime name ("docker" or "podman").
	Name() string

	// Available reports whether the runtime binary exists on PATH and
	// responds to an info command.
	Available(ctx context.Context) bool

	// ImageExists checks whether the named image exists locally.
	ImageExists(ctx context.Context, image string) error

	// Run executes a container to completion and removes it.
	Run(ctx context.Context, spec RunSpec) error
}

// runtime implements Runtime for a specific container binary. Both Docker
// and Podman share the same logic; they differ only in binary name and the
// subcommand used to check image existence.
type runtime struct {
	bin           string
	imageCheckCmd []string // e.g. ["image", "inspect"] for docker
	exec          command.Runner
}

func (r *runtime) Name() string { return r.bin }

func (r *runtime) Available(ctx context.Context) bool {
	if _, err := r.exec.LookPath(r.bin); err != nil {
		return false
	}
	return r.exec.Run(ctx, command.Cmd{Name: r.bin, Args: []string{"info"}}) == nil
}

func (r *runtime) ImageExists(ctx context.Context, image string) error {
	args := make([]string, 0, len(r.imageCheckCmd)+1)
	args = append(args, r.imageCheckCmd...)
	args = append(args, image)

	if err := r.exec.Run(ctx, command.Cmd{Name: r.bin, Args: args}); err != nil {
		return fmt.Errorf("image %s not found in %s: %w", image, r.bin, err)
	}
	return nil
}

func (r *runtime) Run(ctx context.Context, spec RunSpec) error {
	args := []string{"run", "--rm"}
	for _, m := range spec.Mounts {
		args = append(args, "-v", m.Host+":"+m.Container)
	}
	if spec.WorkDir != "" {
		args = append(args, "-w", spec.WorkDir)
	}
	args = append(args, spec.Image)
	args = append(args, spec.Args...)

	if err := r.exec.Run(ctx, command.Cmd{Name: r.bin, Args: args}); err != nil {
		return fmt.Errorf("running %s container %s: %w", r.bin, spec.Image, err)
	}
	return nil
}

func newDockerRuntime(exec command.Runner) *runtime {
	return &runtime{
		bin:           binDocker,
		imageCheckCmd: []string{"image", "inspect"},
		exec:          exec,
	}
}

func newPodmanRuntime(exec command.Runner) *runtime {
	return &runtime{
		bin:           binPodman,
		imageCheckCmd: []string{"image", "exists"},
		exec:          exec,
	}
}

// DetectRuntime tries docker first, falls back to podman. Returns an error
// if neither runtime is available.
func DetectRuntime(ctx context.Context, exec command.Runner) (Runtime, error) {
	docker := newDockerRuntime(exec)
	if docker.Available(ctx) {
		return docker, nil
	}

	podman := newPodmanRuntime(exec)
	if podman.Available(ctx) {
		return podman, nil
	}

	return nil, fmt.Errorf(
		"no container runtime available: neither %s nor %s found or operational",
		binDocker, binPodman,
	)
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paperdrop/internal/container"
)

// DefaultImage is the pandoc image used by the container backend.
const DefaultImage = "pandoc/latex:3.5"

// mountPoint is where the working directory appears inside the container.
const mountPoint = "/data"

// ContainerConverter runs pandoc inside a container image. It depends on a
// container.Runtime (docker or podman) injected at construction time.
type ContainerConverter struct {
	runtime container.Runtime
	image   string
}

// NewContainerConverter creates a converter that runs image through rt.
// It verifies that the image exists locally before returning.
func NewContainerConverter(ctx context.Context, rt container.Runtime, image string) (*ContainerConverter, error) {
	if image == "" {
		image = DefaultImage
	}
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("pandoc image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerConverter{runtime: rt, image: image}, nil
}

// Convert mounts the directory that holds the output EPUB (the working
// directory) and runs pandoc from the source tree beneath it.
func (c *ContainerConverter) Convert(ctx context.Context, job Job) error {
	hostDir := filepath.Dir(job.Output)

	absDir, err := filepath.Abs(job.Dir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", job.Dir, err)
	}
	rel, err := filepath.Rel(hostDir, absDir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("source tree %s is not inside %s", job.Dir, hostDir)
	}

	output := path.Join(mountPoint, filepath.Base(job.Output))
	return c.runtime.Run(ctx, container.RunSpec{
		Image:   c.image,
		Mounts:  []container.Mount{{Host: hostDir, Container: mountPoint}},
		WorkDir: path.Join(mountPoint, filepath.ToSlash(rel)),
		Args:    pandocArgs(job.Input, output, job),
	})
}

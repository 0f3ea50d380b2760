// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"

	"github.com/pdiddy/paperdrop/internal/command"
)

// PandocConverter runs a pandoc binary installed on the host.
type PandocConverter struct {
	Runner command.Runner

	// Bin overrides the pandoc executable (default "pandoc").
	Bin string
}

func (p *PandocConverter) Convert(ctx context.Context, job Job) error {
	bin := p.Bin
	if bin == "" {
		bin = "pandoc"
	}
	return p.Runner.Run(ctx, command.Cmd{
		Name: bin,
		Args: pandocArgs(job.Input, job.Output, job),
		Dir:  job.Dir,
	})
}

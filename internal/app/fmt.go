package app

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/specialistvlad/flowgrid/internal/ctxlog"
	"github.com/specialistvlad/flowgrid/internal/hcl"
)

// FmtOptions controls Fmt.
type FmtOptions struct {
	// Write rewrites files in place instead of printing them.
	Write bool
	// Canonical re-encodes each file from its decoded graph. Comments and
	// attribute expressions are not kept.
	Canonical bool
}

// Fmt formats every program file named in the config.
func (a *App) Fmt(ctx context.Context, opts FmtOptions) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	logger := ctxlog.FromContext(ctx)

	files, err := hcl.FindFiles(a.config.ProgramPaths...)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return hcl.ErrNoFiles
	}

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		var out []byte
		if opts.Canonical {
			g, err := hcl.Parse(src, file)
			if err != nil {
				return err
			}
			out = hcl.Encode(g)
		} else if out, err = hcl.Format(src, file); err != nil {
			return err
		}

		if !opts.Write {
			fmt.Fprintf(a.outW, "# %s\n%s", file, out)
			continue
		}
		if bytes.Equal(src, out) {
			logger.Debug("File already formatted.", "file", file)
			continue
		}
		if err := os.WriteFile(file, out, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", file, err)
		}
		logger.Info("File formatted.", "file", file)
	}
	return nil
}

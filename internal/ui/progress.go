package ui

import (
	"fmt"
	"io"

	"github.com/desertthunder/cratecheck/internal/tasks"
)

// FormatProgress renders one update in the colour of its kind.
func FormatProgress(p *Palette, update tasks.ProgressUpdate) string {
	switch update.Kind {
	case tasks.KindDone:
		return p.OK(update.Message)
	case tasks.KindWarn:
		return p.Warn(update.Message)
	case tasks.KindError:
		return p.Error(update.Message)
	default:
		return p.Info(update.Message)
	}
}

// ProgressOptions controls which updates [PrintProgress] writes.
type ProgressOptions struct {
	Palette *Palette
	Quiet   bool // drop per-file tag errors
}

// PrintProgress writes every update received on updates to w until the channel is closed.
// The returned channel is closed once the last update has been written.
func PrintProgress(w io.Writer, updates <-chan tasks.ProgressUpdate, opts ProgressOptions) <-chan struct{} {
	if opts.Palette == nil {
		opts.Palette = Default
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range updates {
			if update.Kind == tasks.KindError && opts.Quiet {
				continue
			}
			fmt.Fprintln(w, FormatProgress(opts.Palette, update))
		}
	}()
	return done
}

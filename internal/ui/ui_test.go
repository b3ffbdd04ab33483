package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/desertthunder/cratecheck/internal/tasks"
)

func TestFormatProgress(t *testing.T) {
	p := Plain()
	kinds := []tasks.Kind{tasks.KindInfo, tasks.KindDone, tasks.KindWarn, tasks.KindError}
	for _, kind := range kinds {
		got := FormatProgress(p, tasks.ProgressUpdate{Kind: kind, Message: "Generating tracklist..."})
		if got != "Generating tracklist..." {
			t.Errorf("plain palette should not change the message, got %q", got)
		}
	}

	if got := FormatProgress(Default, tasks.ProgressUpdate{Kind: tasks.KindDone, Message: "done"}); !strings.Contains(got, "done") {
		t.Errorf("styled message should keep its text, got %q", got)
	}
}

func TestPrintProgress(t *testing.T) {
	t.Run("writes updates in order", func(t *testing.T) {
		var buf bytes.Buffer
		updates := make(chan tasks.ProgressUpdate, 3)
		done := PrintProgress(&buf, updates, ProgressOptions{Palette: Plain()})

		updates <- tasks.ProgressUpdate{Kind: tasks.KindInfo, Message: "first"}
		updates <- tasks.ProgressUpdate{Kind: tasks.KindError, Message: "second"}
		updates <- tasks.ProgressUpdate{Kind: tasks.KindDone, Message: "third"}
		close(updates)
		<-done

		if buf.String() != "first\nsecond\nthird\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})

	t.Run("quiet hides file errors", func(t *testing.T) {
		var buf bytes.Buffer
		updates := make(chan tasks.ProgressUpdate, 2)
		done := PrintProgress(&buf, updates, ProgressOptions{Palette: Plain(), Quiet: true})

		updates <- tasks.ProgressUpdate{Kind: tasks.KindError, Message: "Error processing a.mp3"}
		updates <- tasks.ProgressUpdate{Kind: tasks.KindWarn, Message: "Skipping folder"}
		close(updates)
		<-done

		if buf.String() != "Skipping folder\n" {
			t.Errorf("unexpected output %q", buf.String())
		}
	})
}

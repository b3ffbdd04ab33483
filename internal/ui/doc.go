// Package ui renders pipeline progress as coloured terminal lines.
//
// A [Palette] holds the [lipgloss] styles; [PrintProgress] drains a channel of
// [tasks.ProgressUpdate] and writes each update in the colour of its kind: blue while a
// folder is being scanned, green when a step completes, yellow for skipped folders and
// red for files that could not be read.
package ui

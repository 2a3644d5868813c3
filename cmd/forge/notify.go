package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/aretw0/forge/pkg/core"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#7aa2f7"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89"))
)

// notifier prints service notifications as one styled line each.
type notifier struct {
	out io.Writer
}

func newNotifier(out io.Writer) *notifier {
	return &notifier{out: out}
}

func (n *notifier) Notify(message string, kind core.NoticeKind) {
	_, _ = fmt.Fprintln(n.out, noticeLine(message, kind))
}

func noticeLine(message string, kind core.NoticeKind) string {
	switch kind {
	case core.NoticeSuccess:
		return successStyle.Render("✓ " + message)
	case core.NoticeError:
		return errorStyle.Render("✗ " + message)
	default:
		return infoStyle.Render("• " + message)
	}
}

// formConfirmer asks through a huh confirm prompt. An aborted prompt counts
// as a refusal.
type formConfirmer struct{}

func (formConfirmer) Confirm(prompt string) bool {
	var ok bool
	err := huh.NewConfirm().
		Title(prompt).
		Affirmative("Delete").
		Negative("Cancel").
		Value(&ok).
		Run()
	return err == nil && ok
}

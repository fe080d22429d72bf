package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/xaviermilgo/solana-akinator/game"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)
	messageStyle = lipgloss.NewStyle().Italic(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	onlineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	offlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	addressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	moodColors   = map[game.Mood]lipgloss.Color{
		game.MoodIdle:      "250",
		game.MoodThinking:  "39",
		game.MoodAsking:    "214",
		game.MoodConfident: "42",
		game.MoodCorrect:   "46",
		game.MoodWrong:     "203",
		game.MoodGlitched:  "201",
	}
)

const helpText = `Commands:
  start            begin a new game
  submit <handle>  let the Jinn guess the wallet behind a Twitter handle (or just type @handle)
  status           show the current game state
  help             show this help
  quit             leave`

// renderer serializes writes from the prompt and from connection callbacks.
type renderer struct {
	mu  sync.Mutex
	out io.Writer
}

func newRenderer(out io.Writer) *renderer {
	return &renderer{out: out}
}

func (r *renderer) Render(s game.Snapshot) {
	r.println(renderSnapshot(s))
}

func (r *renderer) Help() {
	r.println(dimStyle.Render(helpText))
}

func (r *renderer) Error(err error) {
	r.println(errorStyle.Render("error: " + err.Error()))
}

func (r *renderer) Prompt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.out, "akinator> ")
}

func (r *renderer) println(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, s)
}

func renderSnapshot(s game.Snapshot) string {
	var b strings.Builder

	mood := lipgloss.NewStyle().Bold(true).Foreground(moodColors[s.Mood])
	b.WriteString(titleStyle.Render("Jinn"))
	b.WriteString(" ")
	b.WriteString(mood.Render(string(s.Mood)))
	b.WriteString("  ")
	b.WriteString(connectionBadge(s))
	b.WriteString("\n")
	b.WriteString(messageStyle.Render(s.Message))

	if s.Handle != "" {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("handle: @" + s.Handle))
	}
	for _, p := range s.Progress {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("  ... " + p))
	}
	if s.Result != nil {
		b.WriteString("\n")
		b.WriteString(renderResult(*s.Result))
	}
	return b.String()
}

func connectionBadge(s game.Snapshot) string {
	switch {
	case s.Exhausted:
		return offlineStyle.Render("offline, restart to retry")
	case s.Connected:
		return onlineStyle.Render("connected")
	default:
		return pendingStyle.Render("connecting...")
	}
}

func renderResult(r game.WalletResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (confidence %d%%)", headerStyle.Render("Wallets for @"+r.TwitterHandle), r.Confidence)

	if len(r.Addresses) == 0 {
		b.WriteString("\n  no wallet addresses found")
		return b.String()
	}
	for i, addr := range r.Addresses {
		b.WriteString("\n  ")
		b.WriteString(addressStyle.Render(addr))
		if i < len(r.Sources) && r.Sources[i] != "" {
			b.WriteString(dimStyle.Render("  via " + r.Sources[i]))
		}
	}
	return b.String()
}

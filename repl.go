package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"querychat/internal/conversation"
	"querychat/internal/models"
	"querychat/internal/session"
	"querychat/internal/worker"
)

const replHelp = `Befehle:
  /channels        Kanäle anzeigen
  /channel <id>    Kanal wechseln
  /history         Verlauf des aktiven Kanals
  /quit            Beenden`

// repl is the terminal front end of the conversation engine.
type repl struct {
	engine *conversation.Engine
	in     io.Reader
	out    io.Writer

	// readerDone is closed once the input goroutine of Run has exited.
	readerDone chan struct{}
}

func newREPL(engine *conversation.Engine, in io.Reader, out io.Writer) *repl {
	return &repl{engine: engine, in: in, out: out}
}

// Run reads lines until EOF, /quit or ctx is done.
func (r *repl) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	lines := make(chan string)
	r.readerDone = make(chan struct{})
	go r.read(ctx, lines)

	fmt.Fprintln(r.out, replHelp)
	for {
		r.prompt()
		var line string
		select {
		case <-ctx.Done():
			return nil
		case l, ok := <-lines:
			if !ok {
				return nil
			}
			line = l
		}
		if done := r.handle(ctx, strings.TrimSpace(line)); done {
			return nil
		}
	}
}

// read forwards input lines until EOF or until Run has returned.
func (r *repl) read(ctx context.Context, lines chan<- string) {
	defer close(r.readerDone)
	defer close(lines)
	scanner := bufio.NewScanner(r.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-ctx.Done():
			return
		}
	}
}

func (r *repl) prompt() {
	fmt.Fprintf(r.out, "[%s]> ", r.engine.Store().Active())
}

func (r *repl) handle(ctx context.Context, line string) bool {
	store := r.engine.Store()
	switch {
	case line == "/quit" || line == "/exit":
		return true
	case line == "/help":
		fmt.Fprintln(r.out, replHelp)
	case line == "/channels":
		active := store.Active()
		for _, ch := range store.Channels() {
			marker := " "
			if ch.ID == active {
				marker = "*"
			}
			fmt.Fprintf(r.out, "%s %s (%s, %s)\n", marker, ch.ID, ch.DisplayName, ch.Domain)
		}
	case strings.HasPrefix(line, "/channel "):
		id := strings.TrimSpace(strings.TrimPrefix(line, "/channel "))
		if err := store.SetActive(id); err != nil {
			fmt.Fprintf(r.out, "Unbekannter Kanal: %s\n", id)
		}
	case line == "/history":
		msgs, err := store.Get(store.Active())
		if err != nil {
			fmt.Fprintln(r.out, err)
			return false
		}
		for _, msg := range msgs {
			r.print(msg)
		}
	default:
		msgs, err := r.engine.Send(ctx, line)
		switch {
		case errors.Is(err, worker.ErrQueueFull):
			fmt.Fprintln(r.out, "Der Kanal ist beschäftigt, bitte gleich noch einmal versuchen.")
		case errors.Is(err, session.ErrUnknownChannel):
			fmt.Fprintln(r.out, err)
		case err != nil:
			fmt.Fprintf(r.out, "Fehler: %v\n", err)
		}
		for _, msg := range msgs {
			if msg.Sender == models.SenderBot {
				r.print(msg)
			}
		}
	}
	return false
}

func (r *repl) print(msg models.Message) {
	label := "Du"
	if msg.Sender == models.SenderBot {
		label = "Bot"
	}
	fmt.Fprintf(r.out, "%s: %s\n", label, msg.Text)
	if msg.Result == nil || len(msg.Result.Rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	for _, row := range msg.Result.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

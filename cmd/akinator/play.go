package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xaviermilgo/solana-akinator/core"
	"github.com/xaviermilgo/solana-akinator/game"
	"github.com/xaviermilgo/solana-akinator/logger"
	"golang.org/x/sync/errgroup"
)

// player is the part of game.Session the prompt drives.
type player interface {
	Start() error
	Submit(handle string) error
	Snapshot() game.Snapshot
}

func play(ctx context.Context, cfg appConfig, in io.Reader, out io.Writer) error {
	log := logger.Logger()
	r := newRenderer(out)

	session := game.NewSession(log, r.Render)
	manager, err := core.NewManager(cfg.Connection, session.Handlers(), core.WithLogger(log))
	if err != nil {
		return fmt.Errorf("failed to create connection manager: %w", err)
	}
	session.Attach(manager)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return runPrompt(ctx, in, r, session)
	})
	g.Go(func() error {
		<-ctx.Done()
		return manager.Close()
	})
	return g.Wait()
}

// runPrompt reads commands until quit, EOF or ctx is done.
func runPrompt(ctx context.Context, in io.Reader, r *renderer, p player) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	r.Help()
	for {
		r.Prompt()
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return <-scanErr
			}
			quit, err := execute(line, r, p)
			if err != nil {
				r.Error(err)
			}
			if quit {
				return nil
			}
		}
	}
}

func execute(line string, r *renderer, p player) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch cmd := strings.ToLower(fields[0]); cmd {
	case "start", "new":
		return false, p.Start()
	case "submit", "guess":
		if len(fields) < 2 {
			return false, game.ErrEmptyHandle
		}
		return false, p.Submit(fields[1])
	case "status":
		r.Render(p.Snapshot())
		return false, nil
	case "help", "?":
		r.Help()
		return false, nil
	case "quit", "exit":
		return true, nil
	default:
		// A bare @handle is a submission.
		if strings.HasPrefix(cmd, "@") {
			return false, p.Submit(fields[0])
		}
		return false, fmt.Errorf("unknown command: %s", fields[0])
	}
}

// Command editor is a terminal client for the blog API. Edits are autosaved as drafts
// after a quiet period and, while focused, on a keep-alive interval.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"blogeditor/internal/client"
	"blogeditor/internal/config"
	"blogeditor/internal/editor"
	"blogeditor/internal/logger"
)

func main() {
	cfg := config.LoadEditor()

	fs := flag.NewFlagSet("editor", flag.ExitOnError)
	fs.StringVar(&cfg.APIURL, "api", cfg.APIURL, "blog API base URL")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "quiet period before an edit is autosaved")
	fs.DurationVar(&cfg.KeepAlive, "keepalive", cfg.KeepAlive, "autosave interval while focused")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "per-request timeout")
	_ = fs.Parse(os.Args[1:])

	zl, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	api, err := client.New(cfg.APIURL, cfg.RequestTimeout)
	if err != nil {
		zl.Fatal("invalid api url", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	run(ctx, cfg, api, os.Stdin, os.Stdout, zl)
}

// lockedWriter serializes REPL output with session events fired from timer goroutines.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

func run(ctx context.Context, cfg *config.EditorConfig, api blogAPI, in io.Reader, w io.Writer, zl *zap.Logger) {
	out := &lockedWriter{w: w}
	sess := editor.NewSession(api, editor.SessionConfig{
		Debounce:       cfg.Debounce,
		KeepAlive:      cfg.KeepAlive,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         zl,
		OnEvent: func(ev editor.Event) {
			fmt.Fprintf(out, "* %s\n", ev)
		},
	})
	defer sess.Close()

	r := &repl{api: api, sess: sess, out: out}
	fmt.Fprintf(out, "editing against %s, type help for commands\n", cfg.APIURL)

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		fmt.Fprint(out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			quit, err := r.exec(ctx, line)
			if err != nil {
				fmt.Fprintf(out, "! %v\n", err)
			}
			if quit {
				return
			}
		}
	}
}

// Package gherkinls implements the gherkinls language server command.
package gherkinls

import (
	"context"
	"flag"
	"io"
	"log"
	"os"

	"github.com/xoro/robotframework-gherkin-parser/internal/cli"
	"github.com/xoro/robotframework-gherkin-parser/internal/lsp"
	"github.com/xoro/robotframework-gherkin-parser/internal/version"
)

// Run executes gherkinls with the given arguments.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for testing.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		versionFlag bool
		verboseFlag bool
	)

	fs := flag.NewFlagSet("gherkinls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: gherkinls [flags]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Language server mapping Gherkin steps to Robot Framework keywords.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "The server communicates over stdio using JSON-RPC 2.0.")
		cli.Writeln(stderr, "Configure your editor to launch this binary as an LSP server.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Features:")
		cli.Writeln(stderr, "  - Go to definition (step -> keyword)")
		cli.Writeln(stderr, "  - Hover documentation (keyword card)")
		cli.Writeln(stderr, "  - Find references (keyword -> steps)")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Flags:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return cli.ExitOK
		}
		return cli.ExitError
	}

	if versionFlag {
		cli.Writef(stdout, "gherkinls %s\n", version.String())
		return cli.ExitOK
	}

	// Setup logging
	if verboseFlag {
		log.SetOutput(stderr)
		log.SetFlags(log.Ltime | log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	// Create context with cancellation for clean shutdown
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	server := lsp.NewServer(cancel)

	rwc := &stdioConn{
		Reader: stdin,
		Writer: stdout,
	}

	conn := lsp.NewConn(rwc, server)
	server.SetConn(conn)

	log.Printf("gherkinls: starting server")

	if err := conn.Run(ctx); err != nil && ctx.Err() == nil {
		cli.Writef(stderr, "gherkinls: %v\n", err)
		return cli.ExitError
	}

	log.Printf("gherkinls: server stopped")
	return cli.ExitOK
}

// stdioConn wraps stdin/stdout as an io.ReadWriteCloser.
type stdioConn struct {
	io.Reader
	io.Writer
}

func (s *stdioConn) Close() error {
	return nil
}

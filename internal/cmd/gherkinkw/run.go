// Package gherkinkw implements the gherkinkw workspace query command.
package gherkinkw

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/xoro/robotframework-gherkin-parser/internal/cli"
	"github.com/xoro/robotframework-gherkin-parser/internal/index"
	"github.com/xoro/robotframework-gherkin-parser/internal/keyword"
	"github.com/xoro/robotframework-gherkin-parser/internal/version"
	"github.com/xoro/robotframework-gherkin-parser/internal/workspace"
)

type options struct {
	root    string
	from    string
	jsonOut bool
	watch   bool
}

// Run executes gherkinkw with the given arguments.
func Run(args []string) int {
	return RunWithIO(context.Background(), args, os.Stdin, os.Stdout, os.Stderr)
}

// RunWithIO allows custom IO for testing.
func RunWithIO(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	var (
		opts        options
		versionFlag bool
		verboseFlag bool
	)

	fs := flag.NewFlagSet("gherkinkw", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.root, "root", "", "workspace root (default: marker search from cwd)")
	fs.StringVar(&opts.from, "from", "", "file the query originates from, for usage proximity ranking")
	fs.BoolVar(&opts.jsonOut, "json", false, "emit JSON instead of text")
	fs.BoolVar(&opts.watch, "watch", false, "rerun the command when workspace files change")
	fs.BoolVar(&versionFlag, "version", false, "print version and exit")
	fs.BoolVar(&verboseFlag, "v", false, "verbose logging to stderr")

	fs.Usage = func() {
		cli.Writeln(stderr, "Usage: gherkinkw [flags] <command> [args]")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Query Robot Framework keywords against Gherkin feature steps.")
		cli.Writeln(stderr)
		cli.Writeln(stderr, "Commands:")
		cli.Writeln(stderr, "  list                   list keyword definitions in the workspace")
		cli.Writeln(stderr, "  resolve <step text>    resolve a step to keyword definitions")
		cli.Writeln(stderr, "  usages <keyword name>  find feature steps that use a keyword")
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
		cli.Writef(stdout, "gherkinkw %s\n", version.String())
		return cli.ExitOK
	}

	if verboseFlag {
		log.SetOutput(stderr)
		log.SetFlags(log.Ltime | log.Lshortfile)
	} else {
		log.SetOutput(io.Discard)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return cli.ExitError
	}
	command, cmdArgs := rest[0], rest[1:]

	if opts.root == "" {
		opts.root = workspace.FindRootFromCwd()
	}
	if opts.root == "" {
		cli.Writeln(stderr, "gherkinkw: no workspace root found")
		return cli.ExitError
	}

	run := func() error {
		return runCommand(ctx, command, cmdArgs, opts, stdout)
	}

	if opts.watch {
		if err := runWatch(ctx, opts.root, stderr, run); err != nil {
			cli.Writef(stderr, "gherkinkw: %v\n", err)
			return cli.ExitError
		}
		return cli.ExitOK
	}

	if err := run(); err != nil {
		var code cli.ExitCodeError
		if errors.As(err, &code) {
			return int(code)
		}
		cli.Writef(stderr, "gherkinkw: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

func runCommand(ctx context.Context, command string, args []string, opts options, stdout io.Writer) error {
	switch command {
	case "list":
		return runList(ctx, opts, stdout)
	case "resolve":
		if len(args) == 0 {
			return fmt.Errorf("resolve: missing step text")
		}
		return runResolve(ctx, strings.Join(args, " "), opts, stdout)
	case "usages":
		if len(args) == 0 {
			return fmt.Errorf("usages: missing keyword name")
		}
		return runUsages(ctx, strings.Join(args, " "), opts, stdout)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

type keywordRecord struct {
	Name     string   `json:"name"`
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Args     []string `json:"arguments,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Doc      string   `json:"documentation,omitempty"`
	Priority int      `json:"priority,omitempty"`
}

type occurrenceRecord struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

func record(d *keyword.Definition, priority int) keywordRecord {
	return keywordRecord{
		Name:     d.Name,
		File:     d.File,
		Line:     d.Line + 1,
		Args:     d.Args,
		Tags:     d.Tags,
		Doc:      d.Doc,
		Priority: priority,
	}
}

func runList(ctx context.Context, opts options, stdout io.Writer) error {
	ix, err := index.BuildKeywords(ctx, opts.root)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		records := make([]keywordRecord, 0, ix.Len())
		for _, d := range ix.All() {
			records = append(records, record(d, 0))
		}
		return writeJSON(stdout, records)
	}

	for _, d := range ix.All() {
		cli.Writef(stdout, "%s:%d\t%s\n", d.File, d.Line+1, d.Name)
	}
	return nil
}

func runResolve(ctx context.Context, step string, opts options, stdout io.Writer) error {
	ix, err := index.BuildKeywords(ctx, opts.root)
	if err != nil {
		return err
	}

	matches := keyword.ResolveStep(ix.All(), step)

	if opts.jsonOut {
		records := make([]keywordRecord, 0, len(matches))
		for _, m := range matches {
			records = append(records, record(m.Definition, int(m.Priority)))
		}
		if err := writeJSON(stdout, records); err != nil {
			return err
		}
	} else {
		for _, m := range matches {
			cli.Writef(stdout, "P%d %s:%d\t%s\n", m.Priority, m.Definition.File, m.Definition.Line+1, m.Definition.Name)
		}
	}

	if len(matches) == 0 {
		return cli.ExitCodeError(cli.ExitWarning)
	}
	return nil
}

func runUsages(ctx context.Context, name string, opts options, stdout io.Writer) error {
	ix, err := index.BuildKeywords(ctx, opts.root)
	if err != nil {
		return err
	}
	occs, err := index.BuildSteps(ctx, opts.root)
	if err != nil {
		return err
	}

	def := lookupDefinition(ix, name, opts.from)
	usages := keyword.ResolveUsages(occs, def)

	if opts.jsonOut {
		records := make([]occurrenceRecord, 0, len(usages))
		for _, u := range usages {
			records = append(records, occurrenceRecord{File: u.File, Line: u.Line + 1, Text: u.Text})
		}
		if err := writeJSON(stdout, records); err != nil {
			return err
		}
	} else {
		for _, u := range usages {
			cli.Writef(stdout, "%s:%d\t%s\n", u.File, u.Line+1, u.Text)
		}
	}

	if len(usages) == 0 {
		return cli.ExitCodeError(cli.ExitWarning)
	}
	return nil
}

// lookupDefinition finds the indexed definition for a keyword name. A
// -from path overrides the proximity origin; a name missing from the
// index still queries with a synthesized definition.
func lookupDefinition(ix *index.KeywordIndex, name, from string) *keyword.Definition {
	if from != "" {
		return keyword.NewDefinition(name, from, 0)
	}
	if defs := ix.Lookup(keyword.Normalize(name)); len(defs) > 0 {
		return defs[0]
	}
	return keyword.NewDefinition(name, "", 0)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

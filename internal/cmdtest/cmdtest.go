// Package cmdtest provides a testscript-based test harness for the
// gherkin CLI tools.
//
// It uses txtar format test files to specify input files and expected
// outputs, making it easy to write end-to-end CLI tests.
//
// Example test file (testdata/gherkinkw/list.txtar):
//
//	# Listing prints every keyword with its location
//	exec gherkinkw -root . list
//	stdout 'login.resource:2'
//
//	-- steps/login.resource --
//	*** Keywords ***
//	the user logs in as "${username}"
//	    Log    ${username}
package cmdtest

import (
	"os"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/xoro/robotframework-gherkin-parser/internal/cmd/gherkinkw"
	"github.com/xoro/robotframework-gherkin-parser/internal/cmd/gherkinls"
)

// Run executes the testscript tests in the given directory.
func Run(t *testing.T, dir string) {
	testscript.Run(t, testscript.Params{
		Dir: dir,
	})
}

// Main is the TestMain function that should be called from test files.
// It registers the CLI tools as testscript commands.
func Main(m *testing.M) {
	os.Exit(testscript.RunMain(m, map[string]func() int{
		"gherkinkw": wrapRun(gherkinkw.Run),
		"gherkinls": wrapRun(gherkinls.Run),
	}))
}

// wrapRun adapts a Run(args []string) int function for testscript.
func wrapRun(run func(args []string) int) func() int {
	return func() int {
		return run(os.Args[1:])
	}
}

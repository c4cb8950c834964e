package main

import (
	"os"

	"github.com/xoro/robotframework-gherkin-parser/internal/cmd/gherkinkw"
)

func main() {
	os.Exit(gherkinkw.Run(os.Args[1:]))
}

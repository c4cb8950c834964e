package main

import (
	"os"

	"github.com/xoro/robotframework-gherkin-parser/internal/cmd/gherkinls"
)

func main() {
	os.Exit(gherkinls.Run(os.Args[1:]))
}

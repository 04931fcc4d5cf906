package main

import (
	"os"

	"github.com/jacoelho/modelgraph/cmd/modelxform/internal/command"
)

func main() {
	os.Exit(command.Execute(os.Args[1:], os.Stdout, os.Stderr))
}

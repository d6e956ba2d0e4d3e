package main

import (
	"os"

	"cppbind/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}

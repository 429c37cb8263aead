package main

import (
	"os"

	"importguard/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}

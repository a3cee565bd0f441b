package main

import (
	"os"

	"nimctl/internal/cli"
)

func main() {
	os.Exit(cli.Main())
}

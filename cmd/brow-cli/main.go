package main

import (
	"os"

	"github.com/mazurov/brow-cli/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}

package main

import (
	"os"

	"github.com/hearth-labs/hearth/cmd/hearth/cmds"
)

func main() {
	if err := cmds.Execute(); err != nil {
		os.Exit(1)
	}
}

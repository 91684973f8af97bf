package main

import (
	"os"

	"github.com/bryanwahyu/automaton-port/cmd/automaton-port/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}

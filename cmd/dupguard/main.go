package main

import (
	"dupguard/internal/cliapp"
	"os"
)

func main() {
	os.Exit(cliapp.Run(os.Args[1:]))
}

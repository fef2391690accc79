package main

import (
	"os"

	"portfolio-contact/api/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	"github.com/yourusername/s3du/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

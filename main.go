package main

import (
	"context"
	"os"

	"roundcheck/cmd"
)

func main() {
	if err := cmd.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"go.miragespace.co/chordring/cmd/chordring"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := chordring.New().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

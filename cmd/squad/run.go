package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ankittk/agentsquad/internal/cli"
)

func Run(ctx context.Context, args []string) int {
	root := cli.NewRootCmd(Version)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		return 1
	}
	return 0
}

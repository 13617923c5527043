package main

import (
	"context"
	"io"
	"os/exec"
	"time"

	"github.com/GiGurra/cmder"
)

// commandResult is the subset of a cmder result the backends look at
type commandResult struct {
	StdOut   string
	Combined string
	Err      error
}

// commandRunner runs argv (argv[0] is the program) with optional stdin
type commandRunner func(ctx context.Context, stdin io.Reader, args ...string) commandResult

// cmderRunner runs external programs through cmder. A zero timeout leaves
// the attempt unbounded, which interactive choosers need.
func cmderRunner(timeout time.Duration) commandRunner {
	return func(ctx context.Context, stdin io.Reader, args ...string) commandResult {
		c := cmder.New(args...)
		if stdin != nil {
			c = c.WithStdIn(stdin)
		}
		if timeout > 0 {
			c = c.WithAttemptTimeout(timeout)
		}
		res := c.Run(ctx)
		return commandResult{
			StdOut:   res.StdOut,
			Combined: res.Combined,
			Err:      res.Err,
		}
	}
}

// lookPath is swapped out in tests
var lookPath = exec.LookPath

package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/quatton/qtripal/apps/tripalctl/cmd"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "tripalctl crashed: %v\n", r)
			if os.Getenv("TRIPAL_DEBUG") != "" {
				debug.PrintStack()
			}
			os.Exit(2)
		}
	}()

	cmd.Execute()
}

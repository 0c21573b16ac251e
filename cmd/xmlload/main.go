package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/vvka-141/xmlload/internal/cli"
	"github.com/vvka-141/xmlload/pkg/xmlload"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "panic: %v\n%s\n", r, debug.Stack())
			os.Exit(xmlload.ExitPanic)
		}
	}()

	if os.Getenv("XMLLOAD_TEST_PANIC") == "1" {
		panic("intentional test panic")
	}

	if err := cli.Execute(); err != nil {
		os.Exit(xmlload.ExitCodeForError(err))
	}
}

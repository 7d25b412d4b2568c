// cmd/sfactl/main.go
package main

import (
	"fmt"
	"os"

	_ "time/tzdata"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sfactl:", err)
		os.Exit(1)
	}
}

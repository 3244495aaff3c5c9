package main

import (
	"fmt"
	"os"
)

var exit = os.Exit

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exit(1)
	}
}

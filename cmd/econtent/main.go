package main

import (
	"context"
	"fmt"
	"os"

	"github.com/indexdata/crosslink/econtent/app"
)

var exit = os.Exit

func main() {
	err := app.Run(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		exit(1)
	}
}

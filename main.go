package main

import (
	"os"

	"github.com/atlas-ops/atlas/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

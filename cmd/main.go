package main

import (
	"os"

	"github.com/The-Veteran-Culture-Project/site-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

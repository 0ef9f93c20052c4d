package main

import (
	"fmt"
	"os"

	"github.com/BenRutlandWeb/atomic-framework"
	"github.com/BenRutlandWeb/atomic-framework/pkg/console"
)

func main() {
	if err := console.Execute(console.WithVersion(atomic.Version)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

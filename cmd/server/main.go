package main

import (
	"fmt"
	"os"

	"github.com/SAP-F-2025/diagnosis-service/internal/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

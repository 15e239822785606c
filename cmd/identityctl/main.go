package main

import (
	"fmt"
	"os"

	tool "github.com/sandeepkv93/identity-core/internal/tools/identityctl"
)

func main() {
	if err := tool.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "identityctl:", err)
		os.Exit(3)
	}
}

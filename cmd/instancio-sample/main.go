// Package main provides the CLI entrypoint for instancio-sample.
//
// instancio-sample prints generated fixtures of the bundled warehouse model:
//   - picks a model type (order, customer, product, category, drawing)
//   - applies a settings file and a seed for reproducible output
//   - renders values as YAML, JSON or a spew dump, or prints the node tree
package main

import (
	"os"
)

func main() {
	if err := New().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package main is the entry point for the notiondoc CLI tool.
//
// notiondoc documents the structure of a Notion workspace: pages, databases,
// data sources and their properties.
package main

import (
	"os"

	"github.com/maruel/notiondoc/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}

package main

import "github.com/regulaware/dossier-cli/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}

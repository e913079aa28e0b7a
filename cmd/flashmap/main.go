package main

import "github.com/flashmap/flashmap/internal/cli"

func main() {
	cli.Execute()
}

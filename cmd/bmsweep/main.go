package main

import "github.com/nikbrunner/bmsweep/internal/cli"

func main() {
	cli.Execute()
}

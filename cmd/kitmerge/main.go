package main

import "kitmerge/internal/cli"

func main() {
	cli.Execute()
}

package main

import "nsg/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/repute-network/repute/internal/cli"

func main() {
	cli.Execute()
}

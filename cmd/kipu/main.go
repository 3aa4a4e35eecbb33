package main

import "github.com/aalvaropc/kipu/internal/cli"

func main() {
	cli.Execute()
}

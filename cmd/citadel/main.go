package main

import "github.com/apex-citadels/citadel/internal/cli"

func main() {
	cli.Execute()
}

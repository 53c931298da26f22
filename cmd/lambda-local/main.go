package main

import "github.com/aura-studio/lambda-local/cli"

func main() {
	cli.Execute()
}

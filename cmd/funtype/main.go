package main

import "github.com/funvibe/funtype/internal/cli"

func main() {
	cli.Execute()
}

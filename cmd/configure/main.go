package main

import "github.com/andreypopp/configure/internal/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/kirillkom/portfolio-builder/internal/cli"

func main() {
	cli.Execute()
}

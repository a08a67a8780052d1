package main

import "github.com/dmitrijs2005/secureshare/internal/client/cli"

func main() {
	cli.Execute()
}

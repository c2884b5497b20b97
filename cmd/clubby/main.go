package main

import "github.com/pavilion-labs/clubby/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}

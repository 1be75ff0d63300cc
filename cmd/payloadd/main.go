package main

import "github.com/LeJamon/goPayloadd/internal/cli"

func main() {
	cli.Execute()
}

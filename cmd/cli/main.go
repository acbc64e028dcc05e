package main

import (
	"github.com/mchmarny/moodctl/pkg/cli"
)

func main() {
	cli.Execute()
}

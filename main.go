package main

import (
	"github.com/litkg/kgctl/cmd"
)

func main() {
	cmd.Execute()
}

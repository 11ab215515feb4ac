package main

import (
	"github.com/locksmith-go/locksmith/cmd"
)

func main() {
	cmd.Execute()
}

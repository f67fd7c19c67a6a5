package main

import (
	"github.com/lumocast/pickerd/cmd/pickerd/commands"
)

func main() {
	commands.Execute()
}

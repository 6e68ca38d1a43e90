package main

import "github.com/vbonduro/txdao/cmd/txdao/commands"

func main() {
	commands.Execute()
}

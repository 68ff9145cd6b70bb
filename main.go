package main

import "github.com/snapscore/melodex/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/bivex/loreSystem-sub001/cmd"

func main() {
	cmd.Execute()
}

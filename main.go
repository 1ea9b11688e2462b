package main

import "github.com/papapumpkin/when/cmd"

func main() {
	cmd.Execute()
}

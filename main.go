package main

import "github.com/thenoetrevino/leadboard/cmd"

func main() {
	cmd.Execute()
}

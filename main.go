package main

import "github.com/live627/elkarte.net/cmd"

func main() {
	cmd.Execute()
}

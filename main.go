package main

import "github.com/samsaffron/hunk/cmd"

func main() {
	cmd.Execute()
}

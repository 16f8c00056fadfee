package main

import "github.com/nfrund/neuralfeed/cmd/neuralfeed/cmd"

func main() {
	cmd.Execute()
}

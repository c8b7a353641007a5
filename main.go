package main

import "goldwatch/cmd"

func main() {
	cmd.Execute()
}

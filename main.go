package main

import "martdrop/cmd"

func main() {
	cmd.Execute()
}

package main

import "keygrid/cmd"

func main() {
	cmd.Execute()
}

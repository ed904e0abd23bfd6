package main

import "github.com/Alturino/coffeecart/cmd"

func main() {
	cmd.Start()
}

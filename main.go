package main

import (
	"cortlandcast/cmd"
)

func main() {
	cmd.Execute()
}

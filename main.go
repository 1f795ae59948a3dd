package main

import "github.com/Yates-Labs/gitmeup/cmd"

func main() {
	cmd.Execute()
}

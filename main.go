package main

import "github.com/bizlink/digest-engine/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/vexide/arm-toolchain/cmd"

func main() {
	cmd.Execute()
}

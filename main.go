package main

import "github.com/frahmantamala/vortex-demo/cmd"

func main() {
	cmd.Execute()
}

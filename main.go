package main

import "github.com/Yuvraj-cyborg/deduck/cmd"

func main() {
	cmd.Execute()
}

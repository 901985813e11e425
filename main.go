package main

import "github.com/lorekeep/scenarist/cmd"

func main() {
	cmd.Execute()
}

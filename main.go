package main

import "github.com/Digital-Shane/title-match/internal/cmd"

func main() {
	cmd.Execute()
}

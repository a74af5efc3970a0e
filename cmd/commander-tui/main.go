package main

import "github.com/JulienEnigma/instacommand/internal/cmd"

func main() {
	cmd.Execute()
}

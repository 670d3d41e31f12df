package main

import "github.com/MeKo-Tech/docr/cmd/docr/cmd"

func main() {
	cmd.Execute()
}

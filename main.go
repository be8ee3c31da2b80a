package main

import "github.com/amora-app/backend/cmd"

func main() {
	cmd.Execute()
}

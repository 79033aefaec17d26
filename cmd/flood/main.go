package main

import "flood/internal/cliapp"

func main() {
	cliapp.Execute()
}

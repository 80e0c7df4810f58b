package main

import "github.com/Mohsinsiddi/w3vault/cmd"

func main() {
	cmd.Execute()
}

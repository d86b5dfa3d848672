package main

import "limeal.fr/mcengine/cmd"

func main() {
	cmd.Execute()
}

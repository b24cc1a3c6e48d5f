package main

import "material-reconciler/cmd"

func main() {
	cmd.Execute()
}

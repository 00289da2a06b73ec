// cmd/main.go
package main

import cmd "github.com/mwiater/routerchat/cmd/routerchat"

// main starts routerchat by delegating to the cobra root command.
func main() {
	cmd.Execute()
}

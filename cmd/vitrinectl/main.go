// Command vitrinectl exports and inspects archived store snapshots.
package main

import "github.com/jacentio/vitrine/cmd/vitrinectl/commands"

func main() {
	commands.Execute()
}

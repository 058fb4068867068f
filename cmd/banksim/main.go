package main

import "ledger-bank/cmd/banksim/commands"

func main() {
	commands.Execute()
}

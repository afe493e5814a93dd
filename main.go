package main

import "bank-ledger/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/smallbiznis/bizledger/cmd/ledgerctl/cmd"

func main() {
	cmd.Execute()
}

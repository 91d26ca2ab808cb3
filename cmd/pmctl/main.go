// Command pmctl is the operator CLI of the product matching service.
package main

import (
	"os"

	"github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/cmd/pmctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}

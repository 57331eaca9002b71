package main

import (
	"fmt"
	"os"

	"github.com/calvinmclean/todoapi"
	"github.com/calvinmclean/todoapi/extensions"
	"github.com/spf13/cobra"
)

func main() {
	api := todoapi.NewAPI()

	cmd := api.Command()

	var storage extensions.Storage
	storage.AddFlags(cmd.PersistentFlags())

	setupLogging := cmd.PersistentPreRunE
	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		err := setupLogging(cmd, args)
		if err != nil {
			return err
		}

		// Only setup storage for the serve command
		if cmd.Name() != "serve" && cmd.HasParent() {
			return nil
		}

		return api.ApplyExtension(&storage)
	}

	err := cmd.Execute()
	if err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyomoto/vsgen/internal/config"
	"github.com/hyomoto/vsgen/internal/style"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default settings file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfgFile
		if path == "" {
			path = "settings.yaml"
		}
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := config.WriteDefaultConfig(path); err != nil {
			return err
		}
		fmt.Println(style.Success("wrote %s", style.File(path)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

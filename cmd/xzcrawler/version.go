package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "打印版本号",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("xzcrawler %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

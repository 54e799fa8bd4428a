package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var nameCmd = &cobra.Command{
	Use:   "name [新昵称]",
	Short: "查看或设置昵称",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			fmt.Printf("昵称: %s\n用户ID: %s\n", identity.DisplayName, identity.UserID)
			return
		}

		identity.DisplayName = args[0]
		if err := identity.Save(idPath); err != nil {
			fmt.Fprintf(os.Stderr, "保存昵称失败: %v\n", err)
			return
		}
		fmt.Printf("昵称已设置为: %s\n", identity.DisplayName)
	},
}

func init() {
	rootCmd.AddCommand(nameCmd)
}

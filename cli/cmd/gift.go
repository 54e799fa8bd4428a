package cmd

import (
	"fmt"
	"os"
	"time"

	"XingHe-API/client"
	"XingHe-API/model"
	"XingHe-API/protocol"

	"github.com/spf13/cobra"
)

var giftTarget string

var giftCmd = &cobra.Command{
	Use:   "gift <channel> <礼物名>",
	Short: "向频道送出一个礼物",
	Long: `向频道送出一个礼物后退出。

可用礼物：Rose / Finger Heart / Perfume / Crown`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		channelID, giftName := args[0], args[1]

		if _, ok := model.FindGift(giftName); !ok {
			fmt.Fprintf(os.Stderr, "未知礼物: %s\n", giftName)
			fmt.Fprintln(os.Stderr, "可用礼物:")
			for _, g := range model.GiftCatalog {
				fmt.Fprintf(os.Stderr, "  %s %s\n", g.Name, g.Icon)
			}
			return
		}

		joined := make(chan struct{})
		c := client.NewClient(serverAddr, identity, nil, giftDisplay, client.Callbacks{
			OnRoom: func(s *model.LiveSession) {
				close(joined)
			},
		})
		if err := c.Join(channelID, protocol.RoleAudience); err != nil {
			fmt.Fprintf(os.Stderr, "进入频道失败: %v\n", err)
			return
		}
		defer c.Close()

		select {
		case <-joined:
		case <-c.Done():
			fmt.Fprintln(os.Stderr, "进入频道失败：连接被关闭")
			return
		case <-time.After(10 * time.Second):
			fmt.Fprintln(os.Stderr, "进入频道超时")
			return
		}

		if err := c.SendGift(giftName, giftTarget); err != nil {
			fmt.Fprintf(os.Stderr, "送礼失败: %v\n", err)
			return
		}
		// 留一点时间把指令发出去
		time.Sleep(500 * time.Millisecond)
		fmt.Printf("已向频道 %s 送出 %s\n", channelID, giftName)
	},
}

func init() {
	giftCmd.Flags().StringVar(&giftTarget, "to", "", "定向礼物的接收人昵称")
	rootCmd.AddCommand(giftCmd)
}

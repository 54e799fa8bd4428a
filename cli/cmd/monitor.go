package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"XingHe-API/client"
	"XingHe-API/model"
	"XingHe-API/utils"

	"github.com/spf13/cobra"
)

var monitorCmd = &cobra.Command{
	Use:   "monitor <channel>...",
	Short: "同时监听多个频道的礼物和聊天",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// 监听模式以日志为输出
		utils.InitLogger("info")

		manager := client.NewManager(client.ManagerConfig{
			ServerAddr: serverAddr,
			Display:    giftDisplay,
			Callbacks: client.Callbacks{
				OnChat: func(m *model.ChatMessage) {
					utils.Logger.Infof("频道%s 聊天 - %s: %s", m.ChannelID, m.UserName, m.Text)
				},
				OnGiftActive: func(ev *model.GiftEvent) {
					if ev == nil {
						return
					}
					utils.Logger.Infof("频道%s 礼物 - %s: %s %s", ev.ChannelID, ev.SenderName, ev.GiftName, ev.Icon)
				},
			},
		}, identity)

		for _, channelID := range args {
			if err := manager.AddChannel(channelID); err != nil {
				utils.Logger.Errorf("添加频道 %s 失败: %v", channelID, err)
			} else {
				utils.Logger.Infof("开始监听频道 %s", channelID)
			}
		}

		manager.Start()
		fmt.Printf("开始监听 %d 个频道...\n", len(args))

		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c

		fmt.Println("正在关闭...")
		manager.Stop()
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"XingHe-API/client"
	"XingHe-API/model"
	"XingHe-API/overlay"
	"XingHe-API/protocol"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
)

var hostCmd = &cobra.Command{
	Use:   "host <channel>",
	Short: "在指定频道开播",
	Long: `在指定频道开播并进入互动模式。

输入文字发送聊天；/gift <礼物名> 送出礼物；/end 或 Ctrl-D 下播退出。`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		channelID := args[0]

		render := overlay.New(overlay.NewWriterRenderer(os.Stdout))
		c := client.NewClient(serverAddr, identity, nil, giftDisplay, client.Callbacks{
			OnRoom: func(s *model.LiveSession) {
				fmt.Printf("已开播：频道 %s\n", s.ChannelID)
			},
			OnSession: func(s *protocol.SessionData) {
				fmt.Printf("[观看人数] %d\n", s.ViewCount)
			},
			OnChat: func(m *model.ChatMessage) {
				fmt.Printf("%s: %s\n", m.UserName, m.Text)
			},
			OnGiftActive: render.HandleActive,
		})
		if err := c.Join(channelID, protocol.RoleHost); err != nil {
			fmt.Fprintf(os.Stderr, "开播失败: %v\n", err)
			return
		}
		defer c.Close()
		render.Bind(c.Queue())

		shareURL := fmt.Sprintf("http://%s/server/rooms/%s", serverAddr, channelID)
		fmt.Println("分享链接:", shareURL)
		if qr, err := qrcode.New(shareURL, qrcode.Medium); err == nil {
			fmt.Println(qr.ToSmallString(false))
		}

		reader := bufio.NewReader(os.Stdin)
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				break
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if line == "/end" {
				break
			}
			if giftName, ok := strings.CutPrefix(line, "/gift "); ok {
				if err := c.SendGift(strings.TrimSpace(giftName), ""); err != nil {
					fmt.Fprintf(os.Stderr, "送礼失败: %v\n", err)
				}
				continue
			}
			if err := c.SendChat(line); err != nil {
				fmt.Fprintf(os.Stderr, "发送失败: %v\n", err)
			}
		}

		if err := c.End(); err != nil {
			fmt.Fprintf(os.Stderr, "下播失败: %v\n", err)
		}
		fmt.Println("已下播")
	},
}

func init() {
	rootCmd.AddCommand(hostCmd)
}

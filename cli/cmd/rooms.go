package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var roomsCmd = &cobra.Command{
	Use:   "rooms",
	Short: "查看正在直播的频道",
	Run: func(cmd *cobra.Command, args []string) {
		httpClient := &http.Client{Timeout: 10 * time.Second}
		resp, err := httpClient.Get(fmt.Sprintf("http://%s/server/rooms", serverAddr))
		if err != nil {
			fmt.Fprintf(os.Stderr, "请求失败: %v\n", err)
			return
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "读取响应失败: %v\n", err)
			return
		}

		result := gjson.ParseBytes(body)
		if result.Get("code").Int() != 0 {
			fmt.Fprintf(os.Stderr, "服务端错误: %s\n", result.Get("msg").String())
			return
		}

		sessions := result.Get("data").Array()
		if len(sessions) == 0 {
			fmt.Println("当前没有频道在直播")
			return
		}
		for _, s := range sessions {
			fmt.Printf("[LIVE] %s  主播: %s  观看: %d\n",
				s.Get("channel_id").String(),
				s.Get("host_name").String(),
				s.Get("view_count").Int())
		}
	},
}

func init() {
	rootCmd.AddCommand(roomsCmd)
}

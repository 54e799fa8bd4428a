package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"XingHe-API/client"
	"XingHe-API/model"
	"XingHe-API/overlay"
	"XingHe-API/protocol"

	"github.com/rivo/tview"
	"github.com/spf13/cobra"
)

var watchPlain bool

var watchCmd = &cobra.Command{
	Use:   "watch <channel>",
	Short: "进入频道观看直播",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		channelID := args[0]
		if watchPlain {
			watchPlainMode(channelID)
			return
		}
		watchTUI(channelID)
	},
}

// 纯文本模式，适合管道和不支持终端UI的环境
func watchPlainMode(channelID string) {
	render := overlay.New(overlay.NewWriterRenderer(os.Stdout))
	c := client.NewClient(serverAddr, identity, nil, giftDisplay, client.Callbacks{
		OnRoom: func(s *model.LiveSession) {
			fmt.Printf("进入频道 %s，主播 %s，当前观看 %d\n", s.ChannelID, s.HostName, s.ViewCount)
		},
		OnSession: func(s *protocol.SessionData) {
			if s.Status == model.StatusEnded {
				fmt.Println("直播已结束")
				return
			}
			fmt.Printf("[观看人数] %d\n", s.ViewCount)
		},
		OnChat: func(m *model.ChatMessage) {
			fmt.Printf("%s: %s\n", m.UserName, m.Text)
		},
		OnGiftActive: render.HandleActive,
	})
	if err := c.Join(channelID, protocol.RoleAudience); err != nil {
		fmt.Fprintf(os.Stderr, "进入频道失败: %v\n", err)
		return
	}
	defer c.Close()
	render.Bind(c.Queue())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-c.Done():
	}
}

// tviewRenderer 终端UI里的礼物横幅
type tviewRenderer struct {
	app    *tview.Application
	banner *tview.TextView
}

func (r *tviewRenderer) ShowGift(ev *model.GiftEvent) {
	sender := ev.SenderName
	if ev.IsHost {
		sender += "(主播)"
	}
	text := fmt.Sprintf("[yellow]%s 送出了 %s %s[-]", sender, ev.GiftName, ev.Icon)
	r.app.QueueUpdateDraw(func() {
		r.banner.SetText(text)
	})
}

func (r *tviewRenderer) Clear() {
	r.app.QueueUpdateDraw(func() {
		r.banner.SetText("")
	})
}

func watchTUI(channelID string) {
	app := tview.NewApplication()

	banner := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	banner.SetBorder(true).SetTitle(" 礼物 ")

	chatView := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	chatView.SetChangedFunc(func() {
		app.Draw()
	})
	chatView.SetBorder(true).SetTitle(fmt.Sprintf(" 频道 %s ", channelID))

	status := tview.NewTextView().SetTextAlign(tview.AlignRight)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(banner, 3, 0, false).
		AddItem(chatView, 0, 1, true).
		AddItem(status, 1, 0, false)

	render := overlay.New(&tviewRenderer{app: app, banner: banner})
	c := client.NewClient(serverAddr, identity, nil, giftDisplay, client.Callbacks{
		OnRoom: func(s *model.LiveSession) {
			fmt.Fprintf(chatView, "进入频道，主播 %s\n", s.HostName)
		},
		OnSession: func(s *protocol.SessionData) {
			if s.Status == model.StatusEnded {
				app.QueueUpdateDraw(func() {
					status.SetText("直播已结束")
				})
				return
			}
			count := s.ViewCount
			app.QueueUpdateDraw(func() {
				status.SetText(fmt.Sprintf("观看人数 %d", count))
			})
		},
		OnChat: func(m *model.ChatMessage) {
			fmt.Fprintf(chatView, "%s: %s\n", m.UserName, m.Text)
		},
		OnGiftActive: render.HandleActive,
	})

	go func() {
		if err := c.Join(channelID, protocol.RoleAudience); err != nil {
			app.QueueUpdateDraw(func() {
				status.SetText(fmt.Sprintf("进入频道失败: %v", err))
			})
			return
		}
		render.Bind(c.Queue())
		<-c.Done()
		app.QueueUpdateDraw(func() {
			status.SetText("连接已断开")
		})
	}()
	defer c.Close()

	if err := app.SetRoot(flex, true).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "终端UI启动失败: %v\n", err)
	}
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "纯文本输出，不启动终端UI")
	rootCmd.AddCommand(watchCmd)
}

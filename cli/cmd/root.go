package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"XingHe-API/auth"
	"XingHe-API/utils"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile     string
	serverAddr  string
	identity    *auth.Identity
	idPath      string
	giftDisplay time.Duration
)

const (
	serverAddressKey = "server_address"
	identityPathKey  = "identity_path"
	giftDisplayKey   = "gift_display_ms"
)

var rootCmd = &cobra.Command{
	Use:   "xinghe-cli",
	Short: "星河直播间命令行客户端",
	Long: `星河直播间命令行客户端。

支持开播(host)、观看(watch)、送礼(gift)、多频道监听(monitor)，
以及查看正在直播的频道列表(rooms)。`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		utils.InitLogger(viper.GetString("log_level"))

		var err error
		identity, err = auth.EnsureIdentity(idPath)
		if err != nil {
			return fmt.Errorf("初始化本地身份失败: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "配置文件路径（默认 $HOME/.xinghe.yaml）")
	rootCmd.PersistentFlags().String("server", "localhost:8080", "服务端地址 host:port")
	rootCmd.PersistentFlags().String("identity", "", "身份文件路径（默认 $HOME/.xinghe/identity.json）")

	viper.BindPFlag(serverAddressKey, rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag(identityPathKey, rootCmd.PersistentFlags().Lookup("identity"))
	viper.SetDefault(serverAddressKey, "localhost:8080")
	viper.SetDefault(giftDisplayKey, 4000)
	viper.SetDefault("log_level", "warn")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".xinghe")
	}

	viper.SetEnvPrefix("XINGHE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "读取配置文件失败:", err)
		}
	}

	serverAddr = viper.GetString(serverAddressKey)
	giftDisplay = time.Duration(viper.GetInt(giftDisplayKey)) * time.Millisecond

	idPath = viper.GetString(identityPathKey)
	if idPath == "" {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		idPath = filepath.Join(home, ".xinghe", "identity.json")
	}
}

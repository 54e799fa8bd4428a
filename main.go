package main

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"XingHe-API/config"
	"XingHe-API/registry"
	"XingHe-API/relay"
	"XingHe-API/utils"

	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
)

func main() {
	// 读取配置
	cfg := config.NewConfig()

	// 初始化日志
	if err := utils.InitServerLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		utils.InitLogger(cfg.LogLevel)
		utils.Logger.Warnf("日志文件初始化失败，仅输出到终端: %v", err)
	}

	// 打开会话注册表
	db, err := registry.Open(cfg.DBPath)
	if err != nil {
		utils.Logger.Fatalf("打开会话库失败: %v", err)
	}
	defer db.Close()

	store, err := registry.NewStore(db)
	if err != nil {
		utils.Logger.Fatalf("初始化会话注册表失败: %v", err)
	}

	hub := relay.NewHub(store)
	h := relay.NewHandler(hub, store, cfg.ShareBaseURL)

	gin.SetMode(gin.ReleaseMode)
	g := gin.New()
	g.Use(gin.Recovery())

	g.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	g.GET("/server/ws", h.WebSocket)
	g.GET("/server/rooms", h.ListLive)
	g.GET("/server/rooms/:channel", h.GetRoom)
	g.GET("/server/rooms/:channel/qrcode", h.QRCode)

	// 浮层静态资源长缓存
	if utils.FileExists(cfg.AssetDir) {
		assetsRouter := g.Group("/")
		assetsRouter.Use(cachecontrol.New(cachecontrol.CacheAssetsForeverPreset))
		assetsRouter.Static("/overlay/assets", cfg.AssetDir)
	}

	server := http.Server{
		Addr:    cfg.Addr,
		Handler: g,
	}

	go func() {
		utils.Logger.Infof("服务启动于 %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	utils.Logger.Info("正在关闭...")
	server.Close()
}

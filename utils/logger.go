package utils

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var Logger *logrus.Logger

// 初始化日志，level 为空或非法时默认 info
func InitLogger(level string) {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	Logger.SetLevel(lv)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
}

// 服务端模式：JSON 格式，同时写入日志文件
func InitServerLogger(level string, logDir string) error {
	InitLogger(level)
	Logger.SetFormatter(&logrus.JSONFormatter{})

	if logDir == "" {
		return nil
	}
	if err := EnsureDir(logDir); err != nil {
		return err
	}
	name := filepath.Join(logDir, time.Now().Format("2006-01-02-15-04-05")+".log")
	logFile, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	Logger.SetOutput(io.MultiWriter(os.Stdout, logFile))
	return nil
}

package client

import (
	"fmt"
	"sync"
	"time"

	"XingHe-API/auth"
	"XingHe-API/protocol"
	"XingHe-API/utils"
)

// ManagerConfig 多频道监听配置
type ManagerConfig struct {
	ServerAddr string
	Display    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Callbacks  Callbacks
}

// Manager 管理多个频道的观众连接，断线后有限次重连
type Manager struct {
	clients  map[string]*Client
	config   ManagerConfig
	identity *auth.Identity
	mutex    sync.RWMutex
	running  bool
	wg       sync.WaitGroup
}

func NewManager(cfg ManagerConfig, identity *auth.Identity) *Manager {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 5 * time.Second
	}
	return &Manager{
		clients:  make(map[string]*Client),
		config:   cfg,
		identity: identity,
	}
}

// AddChannel 添加要监听的频道
func (m *Manager) AddChannel(channelID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.clients[channelID]; exists {
		return fmt.Errorf("频道 %s 已存在", channelID)
	}

	m.clients[channelID] = NewClient(m.config.ServerAddr, m.identity, nil, m.config.Display, m.config.Callbacks)
	return nil
}

// RemoveChannel 移除频道
func (m *Manager) RemoveChannel(channelID string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if c, exists := m.clients[channelID]; exists {
		c.Close()
		delete(m.clients, channelID)
		utils.Logger.Infof("移除频道 %s", channelID)
	}
}

// Start 启动所有客户端
func (m *Manager) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.running = true

	for channelID, c := range m.clients {
		m.wg.Add(1)
		go m.startClient(channelID, c)
	}
}

// 启动单个客户端，断开后按配置重试
func (m *Manager) startClient(channelID string, c *Client) {
	defer m.wg.Done()

	retries := 0
	for m.isRunning() && retries < m.config.MaxRetries {
		err := c.Join(channelID, protocol.RoleAudience)
		if err != nil {
			utils.Logger.Errorf("频道 %s 连接失败: %v", channelID, err)
			retries++
			if retries < m.config.MaxRetries {
				utils.Logger.Infof("频道 %s 将在 %s 后重试 (%d/%d)",
					channelID, m.config.RetryDelay, retries, m.config.MaxRetries)
				time.Sleep(m.config.RetryDelay)
			}
			continue
		}

		utils.Logger.Infof("频道 %s 连接成功", channelID)
		retries = 0

		// 等待连接断开
		<-c.Done()

		if m.isRunning() {
			utils.Logger.Warnf("频道 %s 连接断开，准备重连", channelID)
			time.Sleep(m.config.RetryDelay)
		}
	}

	if retries >= m.config.MaxRetries {
		utils.Logger.Errorf("频道 %s 重试次数已达上限，停止连接", channelID)
	}
}

func (m *Manager) isRunning() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.running
}

// Stop 停止所有客户端
func (m *Manager) Stop() {
	m.mutex.Lock()
	m.running = false

	for channelID, c := range m.clients {
		c.Close()
		utils.Logger.Infof("关闭频道 %s", channelID)
	}
	m.mutex.Unlock()

	m.wg.Wait()
	utils.Logger.Info("所有客户端已关闭")
}

// GetStatus 各频道连接状态
func (m *Manager) GetStatus() map[string]bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	status := make(map[string]bool)
	for channelID, c := range m.clients {
		status[channelID] = c.IsConnected()
	}
	return status
}

// GetChannels 频道列表
func (m *Manager) GetChannels() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	channels := make([]string, 0, len(m.clients))
	for channelID := range m.clients {
		channels = append(channels, channelID)
	}
	return channels
}

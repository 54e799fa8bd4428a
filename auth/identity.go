package auth

import (
	"encoding/json"
	"os"

	"XingHe-API/utils"

	"github.com/oklog/ulid/v2"
)

// Identity 本地身份信息
type Identity struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// 保存身份信息
func (i *Identity) Save(path string) error {
	data, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	if err := utils.EnsureDir(utils.GetFileDir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// 加载身份信息
func LoadIdentity(path string) (*Identity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var identity Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, err
	}

	return &identity, nil
}

// EnsureIdentity 加载本地身份，不存在时生成新的用户ID并落盘
func EnsureIdentity(path string) (*Identity, error) {
	if utils.FileExists(path) {
		identity, err := LoadIdentity(path)
		if err == nil && identity.UserID != "" {
			return identity, nil
		}
	}

	identity := &Identity{
		UserID:      ulid.Make().String(),
		DisplayName: "User",
	}
	if err := identity.Save(path); err != nil {
		return nil, err
	}
	return identity, nil
}

package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"tripflow/internal/model/auth"
)

// 本地存储的固定键名（沿用既有客户端的存储格式，无版本迁移逻辑）
const (
	tokenFile = "travel_planner_session_token"
	userFile  = "travel_planner_user"
)

// Store 客户端本地存储
// 等价于小程序 storage / 浏览器 localStorage：
// 一个目录下两个小JSON/文本文件，保存会话token和用户记录
type Store struct {
	dir string
}

// New 创建本地存储
// dir 为空时使用系统配置目录下的 tripflow 子目录
func New(dir string) (*Store, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(base, "tripflow")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	return &Store{dir: dir}, nil
}

// Token 读取存储的会话token，不存在时返回空串
func (s *Store) Token() string {
	data, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return ""
	}
	return string(data)
}

// SetToken 写入会话token；空串等价于删除
func (s *Store) SetToken(token string) error {
	path := filepath.Join(s.dir, tokenFile)
	if token == "" {
		return removeIfExists(path)
	}
	return os.WriteFile(path, []byte(token), 0o600)
}

// User 读取存储的用户记录，不存在或损坏时返回 nil
func (s *Store) User() *auth.User {
	data, err := os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		return nil
	}
	var u auth.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil
	}
	return &u
}

// SetUser 写入用户记录；nil 等价于删除
func (s *Store) SetUser(u *auth.User) error {
	path := filepath.Join(s.dir, userFile)
	if u == nil {
		return removeIfExists(path)
	}
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Clear 删除全部持久化状态（登出路径，幂等）
func (s *Store) Clear() error {
	if err := s.SetToken(""); err != nil {
		return err
	}
	return s.SetUser(nil)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

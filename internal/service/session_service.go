package service

import (
	"context"
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"tripflow/internal/config"
	"tripflow/internal/model/auth"
	"tripflow/internal/pkg/jwt"
	"tripflow/internal/pkg/localstore"
	"tripflow/internal/pkg/password"
	"tripflow/internal/postgrest"
	authrepo "tripflow/internal/repository/auth"
)

// 会话相关错误
var (
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	ErrUsernameTaken      = errors.New("用户名已存在")
	ErrUsernameLength     = errors.New("用户名长度需在3-50个字符之间")
	ErrPasswordTooShort   = errors.New("密码长度至少为6位")
	ErrNotLoggedIn        = errors.New("当前未登录")
)

// rpcMissingCode PostgREST 找不到存储过程时的错误码
const rpcMissingCode = "PGRST202"

// AuthState 认证状态快照
type AuthState struct {
	LoggedIn bool
	User     *auth.User
}

// AuthListener 认证状态监听器
// 广播是同步的：监听器在触发变更的调用栈内执行，
// 监听器内不要再调用会话服务的写方法
type AuthListener func(AuthState)

// SessionService 会话服务
// 维护当前登录态，登录/注册/登出/启动校验的唯一入口；
// 同时作为 PostgREST 客户端的 token 来源
type SessionService struct {
	client *postgrest.Client
	users  *authrepo.UserRepo
	store  *localstore.Store

	remember bool

	mu        sync.RWMutex
	token     string
	user      *auth.User
	listeners map[int]AuthListener
	nextID    int
}

// NewSessionService 创建会话服务，并把自己注册为客户端的token来源
func NewSessionService(client *postgrest.Client, users *authrepo.UserRepo, store *localstore.Store, cfg *config.SessionConfig) *SessionService {
	s := &SessionService{
		client:    client,
		users:     users,
		store:     store,
		remember:  cfg.Remember,
		listeners: make(map[int]AuthListener),
	}
	client.SetTokenProvider(s.Token)
	return s
}

// Token 当前会话token，未登录时为空串
func (s *SessionService) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUser 当前登录用户，未登录时为 nil
func (s *SessionService) CurrentUser() *auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsLoggedIn 是否已登录
func (s *SessionService) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Subscribe 注册认证状态监听器，返回注销函数
func (s *SessionService) Subscribe(fn AuthListener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// Login 账号密码登录
// 优先走 authenticate_user RPC（密码不出库）；
// 后端没有该存储过程时回退到直查用户表比对
func (s *SessionService) Login(ctx context.Context, identifier, pwd string) (*auth.User, error) {
	if identifier == "" || pwd == "" {
		return nil, ErrInvalidCredentials
	}

	var rows []auth.AuthenticateRow
	err := s.client.RPC(ctx, "authenticate_user", map[string]any{
		"p_identifier": identifier,
		"p_password":   pwd,
	}, &rows)
	if err != nil {
		var pgErr *postgrest.Error
		if errors.As(err, &pgErr) && (pgErr.Code == rpcMissingCode || pgErr.Status == 404) {
			log.Warn().Msg("后端缺少 authenticate_user 存储过程，回退直查用户表")
			return s.fallbackLogin(ctx, identifier, pwd)
		}
		return nil, err
	}
	if len(rows) == 0 || !rows[0].IsValid {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, rows[0].UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// RPC 已确认身份，读不到完整资料时用返回行兜底
		user = &auth.User{
			ID:          rows[0].UserID,
			Username:    rows[0].Username,
			DisplayName: rows[0].DisplayName,
		}
	}

	if err := s.mintSession(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// fallbackLogin 直查用户表的登录回退
func (s *SessionService) fallbackLogin(ctx context.Context, identifier, pwd string) (*auth.User, error) {
	cred, err := s.users.GetCredentialByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, ErrInvalidCredentials
	}

	switch {
	case cred.PasswordHash != "":
		if !password.Verify(pwd, cred.PasswordHash) {
			return nil, ErrInvalidCredentials
		}
	case cred.Password != "":
		// 历史数据只有明文密码，比对后提示尽快迁移
		if cred.Password != pwd {
			return nil, ErrInvalidCredentials
		}
		log.Warn().Str("user_id", cred.ID).Msg("用户仍使用明文密码存储，应尽快迁移为散列")
	default:
		return nil, ErrInvalidCredentials
	}

	user := cred.User
	if err := s.mintSession(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register 注册新用户并自动登录
func (s *SessionService) Register(ctx context.Context, username, pwd, displayName string) (*auth.User, error) {
	if n := utf8.RuneCountInString(username); n < 3 || n > 50 {
		return nil, ErrUsernameLength
	}
	if utf8.RuneCountInString(pwd) < 6 {
		return nil, ErrPasswordTooShort
	}

	// 先查一次占用，给调用方更快的失败；查询失败不拦路，唯一约束仍在后端兜底
	if existing, err := s.users.GetByIdentifier(ctx, username); err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := password.Hash(pwd)
	if err != nil {
		return nil, err
	}
	if displayName == "" {
		displayName = username
	}

	var users []*auth.User
	err = s.client.RPC(ctx, "register_user", map[string]any{
		"p_username":      username,
		"p_password_hash": hash,
		"p_display_name":  displayName,
	}, &users)
	if err != nil {
		var pgErr *postgrest.Error
		if errors.As(err, &pgErr) && pgErr.IsUniqueViolation() {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	if len(users) == 0 {
		return nil, errors.New("注册失败：后端未返回用户记录")
	}

	user := users[0]
	if err := s.mintSession(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout 登出
// 服务端失效是尽力而为，本地状态一定清除；重复调用无副作用
func (s *SessionService) Logout(ctx context.Context) error {
	token := s.Token()
	if token != "" {
		err := s.client.RPC(ctx, "logout_session", map[string]any{
			"p_session_token": token,
		}, nil)
		if err != nil {
			log.Warn().Err(err).Msg("服务端会话失效失败，仅清除本地状态")
		}
	}
	return s.clearSession()
}

// Restore 启动时恢复并校验本地会话
// 返回 (nil, nil) 表示没有可恢复的会话；
// 后端网络不可达时保留本地缓存用户（离线容忍），不误登出
func (s *SessionService) Restore(ctx context.Context) (*auth.User, error) {
	token := s.store.Token()
	if token == "" {
		return nil, nil
	}

	// 本地过期预检，跳过必然失败的校验请求
	if exp := jwt.PeekExpiry(token); !exp.IsZero() && exp.Before(time.Now()) {
		log.Debug().Time("expired_at", exp).Msg("本地会话已过期，清除")
		return nil, s.store.Clear()
	}

	// 先装上token再校验，让请求带上会话凭证
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	var rows []auth.ValidateSessionRow
	err := s.client.RPC(ctx, "validate_session", map[string]any{
		"p_session_token": token,
	}, &rows)
	if err != nil {
		var pgErr *postgrest.Error
		if errors.As(err, &pgErr) && pgErr.Status == 0 {
			if cached := s.store.User(); cached != nil {
				log.Warn().Err(err).Msg("会话校验网络失败，暂用本地缓存用户")
				s.setSession(token, cached, false)
				return cached, nil
			}
		}
		s.mu.Lock()
		s.token = ""
		s.mu.Unlock()
		return nil, err
	}

	if len(rows) == 0 || !rows[0].IsValid {
		log.Info().Msg("服务端判定会话无效，清除本地状态")
		if err := s.clearSession(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	user := s.store.User()
	if user == nil || user.ID != rows[0].UserID {
		user, err = s.users.GetByID(ctx, rows[0].UserID)
		if err != nil {
			return nil, err
		}
		if user == nil {
			user = &auth.User{
				ID:          rows[0].UserID,
				Username:    rows[0].Username,
				DisplayName: rows[0].DisplayName,
			}
		}
	}

	s.setSession(token, user, s.remember)
	return user, nil
}

// UpdateProfile 更新当前用户资料并同步本地缓存
func (s *SessionService) UpdateProfile(ctx context.Context, patch map[string]any) (*auth.User, error) {
	current := s.CurrentUser()
	if current == nil {
		return nil, ErrNotLoggedIn
	}

	user, err := s.users.UpdateProfile(ctx, current.ID, patch)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = current
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	if s.remember {
		if err := s.store.SetUser(user); err != nil {
			log.Warn().Err(err).Msg("用户缓存写入失败")
		}
	}
	return user, nil
}

// mintSession 为已认证用户签发会话token并切换到登录态
func (s *SessionService) mintSession(ctx context.Context, user *auth.User) error {
	var rows []auth.SessionRow
	err := s.client.RPC(ctx, "create_user_session", map[string]any{
		"p_user_id": user.ID,
	}, &rows)
	if err != nil {
		return err
	}
	if len(rows) == 0 || rows[0].SessionToken == "" {
		return errors.New("后端未返回会话token")
	}

	s.setSession(rows[0].SessionToken, user, s.remember)
	return nil
}

// setSession 切换到登录态并广播
func (s *SessionService) setSession(token string, user *auth.User, persist bool) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if persist {
		if err := s.store.SetToken(token); err != nil {
			log.Warn().Err(err).Msg("会话token持久化失败")
		}
		if err := s.store.SetUser(user); err != nil {
			log.Warn().Err(err).Msg("用户缓存持久化失败")
		}
	}

	s.broadcast(AuthState{LoggedIn: true, User: user})
}

// clearSession 切换到未登录态并广播
func (s *SessionService) clearSession() error {
	s.mu.Lock()
	wasLoggedIn := s.token != ""
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	err := s.store.Clear()
	if wasLoggedIn {
		s.broadcast(AuthState{LoggedIn: false})
	}
	return err
}

// broadcast 同步通知全部监听器
func (s *SessionService) broadcast(state AuthState) {
	s.mu.RLock()
	snapshot := make([]AuthListener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		snapshot = append(snapshot, fn)
	}
	s.mu.RUnlock()

	for _, fn := range snapshot {
		fn(state)
	}
}

package auth

import (
	"context"
	"time"

	"tripflow/internal/model/auth"
	"tripflow/internal/postgrest"
)

const usersTable = "app_users"

// UserRepo 用户仓库
// 只负责把查询意图翻译成REST请求，不含业务逻辑
type UserRepo struct {
	client *postgrest.Client
}

// NewUserRepo 创建用户仓库
func NewUserRepo(client *postgrest.Client) *UserRepo {
	return &UserRepo{client: client}
}

// GetByID 根据ID查询用户
// 零行匹配返回 (nil, nil)，沿用 limit=1 的宽松读语义
func (r *UserRepo) GetByID(ctx context.Context, id string) (*auth.User, error) {
	var users []*auth.User
	res := r.client.From(usersTable).
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx)
	if err := res.Into(&users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// GetByIdentifier 按用户名/邮箱/手机号任一匹配查询用户
func (r *UserRepo) GetByIdentifier(ctx context.Context, identifier string) (*auth.User, error) {
	var users []*auth.User
	res := r.client.From(usersTable).
		Select("*").
		Or("username.eq." + identifier + ",email.eq." + identifier + ",phone.eq." + identifier).
		Single().
		Execute(ctx)
	if err := res.Into(&users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// GetCredentialByIdentifier 查询带密码字段的用户行（登录回退路径）
func (r *UserRepo) GetCredentialByIdentifier(ctx context.Context, identifier string) (*auth.Credential, error) {
	var creds []*auth.Credential
	res := r.client.From(usersTable).
		Select("*").
		Or("username.eq." + identifier + ",email.eq." + identifier + ",phone.eq." + identifier).
		Single().
		Execute(ctx)
	if err := res.Into(&creds); err != nil {
		return nil, err
	}
	if len(creds) == 0 {
		return nil, nil
	}
	return creds[0], nil
}

// Upsert 创建或更新用户（微信首次登录路径）
func (r *UserRepo) Upsert(ctx context.Context, user *auth.User) (*auth.User, error) {
	var users []*auth.User
	res := r.client.From(usersTable).
		Upsert(user).
		Execute(ctx)
	if err := res.Into(&users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

// UpdateProfile 按主键更新资料字段
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, patch map[string]any) (*auth.User, error) {
	patch["updated_at"] = time.Now().UTC().Format(time.RFC3339)

	var users []*auth.User
	res := r.client.From(usersTable).
		Update(patch).
		Eq("id", id).
		Execute(ctx)
	if err := res.Into(&users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

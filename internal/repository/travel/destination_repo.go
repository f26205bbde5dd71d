package travel

import (
	"context"

	"tripflow/internal/model/travel"
	"tripflow/internal/postgrest"
)

const destinationsTable = "destinations"

// DestinationRepo 景点仓库（读为主）
type DestinationRepo struct {
	client *postgrest.Client
}

// NewDestinationRepo 创建景点仓库
func NewDestinationRepo(client *postgrest.Client) *DestinationRepo {
	return &DestinationRepo{client: client}
}

// GetFeatured 获取热门景点，按评分倒序
func (r *DestinationRepo) GetFeatured(ctx context.Context, limit int) ([]*travel.Destination, error) {
	if limit <= 0 {
		limit = 10
	}

	var dests []*travel.Destination
	res := r.client.From(destinationsTable).
		Select("*").
		Eq("is_featured", true).
		Order("rating", false).
		Limit(limit).
		Execute(ctx)
	if err := res.Into(&dests); err != nil {
		return nil, err
	}
	return dests, nil
}

// Search 按关键词搜索名称与描述，可选按分类过滤
func (r *DestinationRepo) Search(ctx context.Context, keyword, category string) ([]*travel.Destination, error) {
	q := r.client.From(destinationsTable).
		Select("*").
		Or("name.ilike.%" + keyword + "%,description.ilike.%" + keyword + "%")
	if category != "" {
		q = q.Eq("category", category)
	}

	var dests []*travel.Destination
	res := q.Order("rating", false).Execute(ctx)
	if err := res.Into(&dests); err != nil {
		return nil, err
	}
	return dests, nil
}

// GetByCategory 按分类获取景点
func (r *DestinationRepo) GetByCategory(ctx context.Context, category string, limit int) ([]*travel.Destination, error) {
	if limit <= 0 {
		limit = 20
	}

	var dests []*travel.Destination
	res := r.client.From(destinationsTable).
		Select("*").
		Eq("category", category).
		Order("rating", false).
		Limit(limit).
		Execute(ctx)
	if err := res.Into(&dests); err != nil {
		return nil, err
	}
	return dests, nil
}

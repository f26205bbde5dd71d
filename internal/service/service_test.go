package service

import (
	"net/http/httptest"
	"testing"
	"time"

	"tripflow/internal/config"
	"tripflow/internal/mockbackend"
	"tripflow/internal/pkg/localstore"
	"tripflow/internal/postgrest"
	authrepo "tripflow/internal/repository/auth"
	travelrepo "tripflow/internal/repository/travel"
)

// testEnv 一套完整的被测装配：mock后端 + 客户端 + 服务层
type testEnv struct {
	server  *httptest.Server
	client  *postgrest.Client
	store   *localstore.Store
	session *SessionService
	travel  *TravelService
}

// newTestEnv 启动内存mock后端并装配服务层
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := mockbackend.New(&config.Config{
		Mock: config.MockConfig{Mode: "test", Port: 7080},
	})
	server := httptest.NewServer(backend.Engine())
	t.Cleanup(server.Close)

	env := &testEnv{server: server}
	env.rebuild(t)
	return env
}

// rebuild 重建客户端与服务层，保留本地存储目录（模拟进程重启）
func (env *testEnv) rebuild(t *testing.T) {
	t.Helper()

	env.client = postgrest.NewClient(&config.SupabaseConfig{
		URL:     env.server.URL,
		AnonKey: "test-anon-key",
		Timeout: 5 * time.Second,
	})

	if env.store == nil {
		store, err := localstore.New(t.TempDir())
		if err != nil {
			t.Fatalf("failed to create local store: %v", err)
		}
		env.store = store
	}

	users := authrepo.NewUserRepo(env.client)
	env.session = NewSessionService(env.client, users, env.store, &config.SessionConfig{Remember: true})

	plans := travelrepo.NewPlanRepo(env.client)
	activities := travelrepo.NewActivityRepo(env.client)
	destinations := travelrepo.NewDestinationRepo(env.client)
	env.travel = NewTravelService(env.client, plans, activities, destinations, env.session)
}

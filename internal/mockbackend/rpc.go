package mockbackend

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripflow/internal/pkg/password"
)

// handleRPC POST /rest/v1/rpc/{fn}
func (s *Server) handleRPC(c *gin.Context) {
	if c.Param("table") != "rpc" {
		restError(c, http.StatusNotFound, "404", "not found")
		return
	}

	var params map[string]any
	if err := c.ShouldBindJSON(&params); err != nil {
		params = map[string]any{}
	}

	fn := c.Param("fn")
	switch fn {
	case "register_user":
		s.rpcRegisterUser(c, params)
	case "authenticate_user":
		s.rpcAuthenticateUser(c, params)
	case "create_user_session":
		s.rpcCreateUserSession(c, params)
	case "validate_session":
		s.rpcValidateSession(c, params)
	case "logout_session":
		s.rpcLogoutSession(c, params)
	case "delete_travel_plan":
		s.rpcDeleteTravelPlan(c, params)
	default:
		restError(c, http.StatusNotFound, "PGRST202",
			"Could not find the function public."+fn+" in the schema cache")
	}
}

// rpcRegisterUser 注册新用户，用户名唯一
func (s *Server) rpcRegisterUser(c *gin.Context, params map[string]any) {
	username, _ := params["p_username"].(string)
	passwordHash, _ := params["p_password_hash"].(string)
	displayName, _ := params["p_display_name"].(string)

	if username == "" || passwordHash == "" {
		restError(c, http.StatusBadRequest, "400", "username and password hash are required")
		return
	}
	if s.store.FindOne("app_users", "username", username) != nil {
		restError(c, http.StatusConflict, "23505",
			"duplicate key value violates unique constraint")
		return
	}
	if displayName == "" {
		displayName = username
	}

	rows, _ := s.store.Insert("app_users", []row{{
		"username":      username,
		"password_hash": passwordHash,
		"display_name":  displayName,
		"provider":      "account",
		"role":          "user",
	}})
	c.JSON(http.StatusOK, stripSecrets(rows))
}

// rpcAuthenticateUser 校验账号密码，密码不出库
func (s *Server) rpcAuthenticateUser(c *gin.Context, params map[string]any) {
	identifier, _ := params["p_identifier"].(string)
	pwd, _ := params["p_password"].(string)

	user := s.findUserByIdentifier(identifier)
	if user == nil || !verifyUserPassword(user, pwd) {
		c.JSON(http.StatusOK, []row{{"is_valid": false}})
		return
	}

	c.JSON(http.StatusOK, []row{{
		"is_valid":     true,
		"user_id":      user["id"],
		"username":     user["username"],
		"display_name": user["display_name"],
	}})
}

// rpcCreateUserSession 为已认证用户签发会话token
func (s *Server) rpcCreateUserSession(c *gin.Context, params map[string]any) {
	userID, _ := params["p_user_id"].(string)
	user := s.store.FindOne("app_users", "id", userID)
	if user == nil {
		restError(c, http.StatusBadRequest, "400", "user not found")
		return
	}

	username, _ := user["username"].(string)
	token, err := s.jwtUtil.GenerateToken(userID, username)
	if err != nil {
		restError(c, http.StatusInternalServerError, "500", "failed to create session")
		return
	}
	s.store.PutSession(token, userID)

	c.JSON(http.StatusOK, []row{{"session_token": token}})
}

// rpcValidateSession 校验会话token是否仍然有效
func (s *Server) rpcValidateSession(c *gin.Context, params map[string]any) {
	token, _ := params["p_session_token"].(string)

	invalid := []row{{"is_valid": false}}
	if token == "" {
		c.JSON(http.StatusOK, invalid)
		return
	}
	if _, err := s.jwtUtil.ValidateToken(token); err != nil {
		c.JSON(http.StatusOK, invalid)
		return
	}
	userID, ok := s.store.SessionUser(token)
	if !ok {
		c.JSON(http.StatusOK, invalid)
		return
	}

	user := s.store.FindOne("app_users", "id", userID)
	if user == nil {
		c.JSON(http.StatusOK, invalid)
		return
	}
	c.JSON(http.StatusOK, []row{{
		"is_valid":     true,
		"user_id":      user["id"],
		"username":     user["username"],
		"display_name": user["display_name"],
	}})
}

// rpcLogoutSession 服务端会话失效，幂等
func (s *Server) rpcLogoutSession(c *gin.Context, params map[string]any) {
	if token, _ := params["p_session_token"].(string); token != "" {
		s.store.DropSession(token)
	}
	c.JSON(http.StatusOK, nil)
}

// rpcDeleteTravelPlan 原子删除行程及其活动，带归属校验
func (s *Server) rpcDeleteTravelPlan(c *gin.Context, params map[string]any) {
	planID, _ := params["p_plan_id"].(string)
	userID, _ := params["p_user_id"].(string)

	plan := s.store.FindOne("travel_plans", "id", planID)
	if plan == nil {
		// 幂等删除
		c.JSON(http.StatusOK, nil)
		return
	}
	if owner, _ := plan["user_id"].(string); owner != userID {
		restError(c, http.StatusForbidden, "42501", "permission denied for travel_plans")
		return
	}

	s.store.Delete("plan_activities", &query{
		filters: []filter{{column: "plan_id", op: "eq", value: planID}},
	})
	s.store.Delete("travel_plans", &query{
		filters: []filter{{column: "id", op: "eq", value: planID}},
	})
	c.JSON(http.StatusOK, nil)
}

// findUserByIdentifier 按用户名/邮箱/手机号查找用户
func (s *Server) findUserByIdentifier(identifier string) row {
	if identifier == "" {
		return nil
	}
	for _, column := range []string{"username", "email", "phone"} {
		if user := s.store.FindOne("app_users", column, identifier); user != nil {
			return user
		}
	}
	return nil
}

// verifyUserPassword 优先比对散列，历史明文行直接比对
func verifyUserPassword(user row, pwd string) bool {
	if pwd == "" {
		return false
	}
	if hash, _ := user["password_hash"].(string); hash != "" {
		return password.Verify(pwd, hash)
	}
	if plain, _ := user["password"].(string); plain != "" {
		return plain == pwd
	}
	return false
}

// stripSecrets 响应中剔除密码字段
func stripSecrets(rows []row) []row {
	for _, r := range rows {
		delete(r, "password")
		delete(r, "password_hash")
	}
	return rows
}

package security

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/TOPBARD/Connect-Hub/global"
	"github.com/TOPBARD/Connect-Hub/tools/errs"
	tksec "github.com/TOPBARD/Connect-Hub/tools/security"
)

// —— context key ——
// 后续模块统一用这个 key 读取已认证用户
const CtxUserIDKey = "userID"

type Options struct {
	// 读取哪个请求头
	HeaderToken               string // 默认 "Authorization"
	CookieName                string // 默认 "jwt"（SPA 登录时种的 cookie）
	EnableAuthorizationBearer bool   // 默认 true
}

func DefaultOptions() *Options {
	return &Options{
		HeaderToken:               "Authorization",
		CookieName:                "jwt",
		EnableAuthorizationBearer: true,
	}
}

// Middleware extracts and verifies the credential issued by the external auth
// collaborator and exposes the authenticated user id to the handlers. Paths
// behind it never see an unauthenticated request.
func Middleware(opts *Options) gin.HandlerFunc {
	if opts == nil {
		opts = DefaultOptions()
	}
	return func(c *gin.Context) {
		var token string
		if authz := strings.TrimSpace(c.GetHeader(opts.HeaderToken)); authz != "" {
			if opts.EnableAuthorizationBearer && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				token = strings.TrimSpace(authz[len("bearer "):])
			} else {
				token = authz
			}
		}
		if token == "" && opts.CookieName != "" {
			if v, err := c.Cookie(opts.CookieName); err == nil {
				token = strings.TrimSpace(v)
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: no token provided"})
			return
		}

		claims, err := tksec.Verify(tksec.DefaultOptions(global.JwtSecret()), token)
		if err != nil {
			c.AbortWithStatusJSON(errs.HTTPStatus(err), gin.H{"error": errs.Message(err)})
			return
		}
		userID := claims.UserID()
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized: token missing subject"})
			return
		}

		c.Set(CtxUserIDKey, userID)
		c.Next()
	}
}

// UserID reads the authenticated user id set by Middleware.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

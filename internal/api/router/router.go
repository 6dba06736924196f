package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"condominio/backend/config"
	"condominio/backend/internal/api/handler"
	"condominio/backend/internal/api/middleware"
	"condominio/backend/pkg/jwt"
	"condominio/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20))
	r.Use(middleware.RateLimit(rdb, 300, time.Minute))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	// nil 的 *redis.Client 不能直接装入接口，否则中间件的 nil 判断失效
	var blacklist middleware.TokenBlacklist
	if rdb != nil {
		blacklist = rdb
	}
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr, blacklist))
	{
		// 出席名册模块
		lists := v1.Group("/attendance-lists")
		{
			lists.GET("", h.AttendanceList.ListLists)
			lists.GET("/calendar.ics", h.AttendanceList.Calendar)
			lists.GET("/:id", h.AttendanceList.GetList)
			lists.POST("", middleware.RoleAuth("admin", "manager"), h.AttendanceList.CreateList)
			lists.POST("/generate", middleware.RoleAuth("admin", "manager"), h.AttendanceList.GenerateList)
			lists.DELETE("/:id", middleware.RoleAuth("admin"), h.AttendanceList.DeleteList)

			// 名册下的记录查询与统计
			lists.GET("/:id/records", h.AttendanceRecord.ListRecords)
			lists.GET("/:id/summary", h.AttendanceRecord.Summary)

			// 导出
			lists.GET("/:id/export", middleware.RoleAuth("admin", "manager"), h.Export.ExportRoster)
			lists.GET("/:id/export/detailed", middleware.RoleAuth("admin", "manager"), h.Export.ExportDetailed)
		}

		// 出席记录模块
		records := v1.Group("/attendance-records")
		{
			records.POST("/mark", h.AttendanceRecord.MarkFull)
			records.PUT("/:id/mark", h.AttendanceRecord.MarkSimple)
			records.PUT("/:id/unmark", h.AttendanceRecord.Unmark)
			records.PUT("/:id/verify", middleware.RoleAuth("admin", "manager"), h.AttendanceRecord.Verify)
			records.PUT("/:id/validity", middleware.RoleAuth("admin", "manager"), h.AttendanceRecord.SetValidity)
		}

		// 代理委托模块
		proxies := v1.Group("/proxies")
		{
			proxies.GET("", h.Proxy.ListProxies)
			proxies.GET("/:id", h.Proxy.GetProxy)
			proxies.POST("", middleware.RoleAuth("admin", "manager"), h.Proxy.CreateProxy)
			proxies.PUT("/:id", middleware.RoleAuth("admin", "manager"), h.Proxy.UpdateProxy)
			proxies.DELETE("/:id", middleware.RoleAuth("admin", "manager"), h.Proxy.DeleteProxy)
		}

		// 单元视角的代理查询
		v1.GET("/property-units/:id/proxies", h.Proxy.ListUnitProxies)
	}

	return r
}

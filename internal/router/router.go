package router

import (
	"net/http"

	"gamify_toolkit/internal/controller"
	"gamify_toolkit/internal/middleware"

	"github.com/gin-gonic/gin"
)

// storefrontCORS 前台接口跨域
// 布局与埋点接口由商家店铺页面跨域调用，来源不可枚举，放开为 *
func storefrontCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine,
	storefrontCtl *controller.StorefrontController,
	layoutCtl *controller.LayoutController,
	gameCtl *controller.GameController,
	settingsCtl *controller.SettingsController,
	statsCtl *controller.StatsController) {
	// 1. 前台开放接口（跨域，无认证）
	api := r.Group("/api/v1", storefrontCORS())
	{
		storefront := api.Group("/storefront")
		{
			// GET /api/v1/storefront/layout?shop=xxx&layoutId=yyy
			storefront.GET("/layout", storefrontCtl.GetLayout)
			storefront.OPTIONS("/layout", storefrontCtl.GetLayout)

			// POST /api/v1/storefront/track
			storefront.POST("/track", storefrontCtl.Track)
			storefront.OPTIONS("/track", storefrontCtl.Track)
		}
	}

	// 2. 商家后台接口（店铺会话认证）
	app := r.Group("/app/v1", middleware.ShopAuth())
	{
		// layout 触控布局
		layouts := app.Group("/layouts")
		{
			layouts.GET("", layoutCtl.ListLayouts)
			layouts.POST("", layoutCtl.CreateLayout)
			layouts.GET("/:id", layoutCtl.GetLayout)
			layouts.PUT("/:id", layoutCtl.UpdateLayout)
			layouts.DELETE("/:id", layoutCtl.DeleteLayout)
			layouts.POST("/:id/default", layoutCtl.SetDefaultLayout)
		}

		// game 游戏管理
		games := app.Group("/games")
		{
			games.GET("", gameCtl.ListGames)
			games.POST("", gameCtl.CreateGame)
			games.GET("/:id", gameCtl.GetGame)
			games.DELETE("/:id", gameCtl.DeleteGame)

			// 嵌入探测会发外部请求，按店铺限流
			games.POST("/:id/probe",
				middleware.ActionRateLimit(middleware.ActionEmbedProbe, 0),
				gameCtl.ProbeEmbed,
			)
			games.POST("/:id/thumbnail",
				middleware.ActionRateLimit(middleware.ActionThumbnail, 0),
				gameCtl.UploadThumbnail,
			)
		}

		// settings 追踪设置
		app.GET("/settings", settingsCtl.GetSettings)
		app.PUT("/settings", settingsCtl.UpdateSettings)

		// stats 数据统计
		app.GET("/statistics", statsCtl.GetStatistics)
		app.GET("/dashboard", statsCtl.GetDashboard)
	}
}

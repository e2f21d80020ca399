package restapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router.
func SetupRouter(portfolioHandler *PortfolioHandler) *gin.Engine {
	router := gin.Default() // standard middleware: Logger, Recovery

	// The dashboard front-end is served from a different origin.
	router.Use(cors.Default())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/portfolio/:address", portfolioHandler.GetSnapshotHandler)
		v1.GET("/portfolio/:address/history", portfolioHandler.GetHistoryHandler)
		v1.GET("/portfolio/:address/chart", portfolioHandler.GetChartHandler)
		v1.GET("/portfolio/:address/profit", portfolioHandler.GetProfitHandler)
		v1.POST("/transfers/deposit", portfolioHandler.PostDepositHandler)
		v1.POST("/transfers/withdraw", portfolioHandler.PostWithdrawHandler)
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

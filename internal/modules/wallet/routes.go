package wallet

import "github.com/gin-gonic/gin"

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	w := rg.Group("/wallet")
	{
		w.GET("", h.GetMyWallet)
		w.POST("/deposit", h.Deposit)
		w.POST("/withdraw", h.Withdraw)
		w.GET("/transactions", h.ListMyTransactions)
		w.GET("/transactions/:id", h.GetMyTransaction)
	}
}

package restapi

import (
	"errors"
	"net/http"

	"portfolio_dashboard/internal/app/port"
	"portfolio_dashboard/internal/app/service"
	"portfolio_dashboard/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// APIHistoryResponse wraps the transfer list together with the degraded
// flag: an empty list with degraded=true means "no data", not "no
// transfers".
type APIHistoryResponse struct {
	Transfers []entity.Transfer `json:"transfers"`
	Degraded  bool              `json:"degraded"`
}

// APIErrorResponse is the uniform error body.
type APIErrorResponse struct {
	Error string `json:"error"`
}

// transferRequest is the body of deposit/withdraw submissions.
type transferRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// PortfolioHandler handles the dashboard's HTTP requests.
type PortfolioHandler struct {
	portfolioService port.PortfolioService
	historyService   port.HistoryService
	chartService     port.ChartService
	transferService  port.TransferService
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(
	ps port.PortfolioService,
	hs port.HistoryService,
	cs port.ChartService,
	ts port.TransferService,
) *PortfolioHandler {
	return &PortfolioHandler{
		portfolioService: ps,
		historyService:   hs,
		chartService:     cs,
		transferService:  ts,
	}
}

// GetSnapshotHandler serves the wallet's balance snapshot.
func (h *PortfolioHandler) GetSnapshotHandler(c *gin.Context) {
	snapshot, err := h.portfolioService.BalanceSnapshot(c.Request.Context(), c.Param("address"))
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, APIErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetHistoryHandler serves the wallet's normalized transfer history.
func (h *PortfolioHandler) GetHistoryHandler(c *gin.Context) {
	address := c.Param("address")
	if !service.ValidWalletAddress(address) {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: entity.ErrInvalidAddress.Error()})
		return
	}
	transfers, degraded := h.historyService.TransferHistory(c.Request.Context(), address)
	c.JSON(http.StatusOK, APIHistoryResponse{Transfers: transfers, Degraded: degraded})
}

// GetChartHandler serves the running-balance chart series for a period.
func (h *PortfolioHandler) GetChartHandler(c *gin.Context) {
	address := c.Param("address")
	if !service.ValidWalletAddress(address) {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: entity.ErrInvalidAddress.Error()})
		return
	}
	period := entity.ChartPeriod(c.DefaultQuery("period", string(entity.DefaultChartPeriod)))
	series, err := h.chartService.ChartSeries(c.Request.Context(), address, period)
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, APIErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"period": period, "points": series})
}

// GetProfitHandler serves the composed profit report.
func (h *PortfolioHandler) GetProfitHandler(c *gin.Context) {
	report, err := h.portfolioService.ProfitLoss(c.Request.Context(), c.Param("address"))
	if err != nil {
		status, msg := mapServiceError(err)
		c.JSON(status, APIErrorResponse{Error: msg})
		return
	}
	c.JSON(http.StatusOK, report)
}

// PostDepositHandler submits a deposit. The submission outcome is always a
// 200 with a TransferResult so the UI renders success and failure the same
// way, without an exception path.
func (h *PortfolioHandler) PostDepositHandler(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, h.transferService.Deposit(c.Request.Context(), req.Amount))
}

// PostWithdrawHandler submits a withdrawal.
func (h *PortfolioHandler) PostWithdrawHandler(c *gin.Context) {
	var req transferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIErrorResponse{Error: "invalid request body"})
		return
	}
	c.JSON(http.StatusOK, h.transferService.Withdraw(c.Request.Context(), req.To, req.Amount))
}

// mapServiceError maps the service error taxonomy onto HTTP statuses.
func mapServiceError(err error) (int, string) {
	var cfgErr *entity.ConfigurationError
	switch {
	case errors.Is(err, entity.ErrInvalidAddress), errors.Is(err, entity.ErrInvalidPeriod):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable, cfgErr.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

package handler

import (
	"errors"
	"strconv"

	"allowance/internal/config"
	"allowance/internal/service"
	"allowance/pkg/logger"
	"allowance/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler 统一处理器，包含所有服务依赖
type Handler struct {
	parentService    *service.ParentService
	allowanceService *service.AllowanceService
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		parentService:    service.NewParentService(db),
		allowanceService: service.NewAllowanceService(db, rdb, cfg),
	}
}

// handleError 把业务错误映射为响应码，其余错误记日志后返回 500
func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPrincipal):
		response.ParamError(c, err.Error())
	case errors.Is(err, service.ErrNotParent):
		response.BusinessError(c, response.CodeNotParent, err.Error())
	case errors.Is(err, service.ErrAllowanceNotFound):
		response.BusinessError(c, response.CodeAllowanceNotFound, err.Error())
	case errors.Is(err, service.ErrInsufficientAllowance):
		response.BusinessError(c, response.CodeInsufficientAllowance, err.Error())
	case errors.Is(err, service.ErrInvalidAmount):
		response.BusinessError(c, response.CodeInvalidAmount, err.Error())
	case errors.Is(err, service.ErrTransactionNotFound):
		response.Error(c, response.CodeNotFound, err.Error())
	case errors.Is(err, service.ErrOptimisticLock), errors.Is(err, service.ErrSystemBusy):
		response.BusinessError(c, response.CodeConcurrentUpdate, err.Error())
	default:
		logger.L().Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		response.ServerError(c, "服务器内部错误")
	}
}

// ============================================================
// 家长相关接口
// ============================================================

// RegisterParent 将调用方登记为家长
// POST /api/v1/parent/register
func (h *Handler) RegisterParent(c *gin.Context) {
	ok, err := h.parentService.Register(c.Request.Context(), Caller(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": ok})
}

// ParentStatus 查询某身份是否为家长
// GET /api/v1/parent/status?principal=xxx
func (h *Handler) ParentStatus(c *gin.Context) {
	principal := c.Query("principal")
	if principal == "" {
		response.ParamError(c, "principal 参数不能为空")
		return
	}

	isParent, err := h.parentService.IsParent(c.Request.Context(), principal)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{
		"principal": principal,
		"is_parent": isParent,
	})
}

// ListChildren 列出调用方管理的孩子额度
// GET /api/v1/parent/children
func (h *Handler) ListChildren(c *gin.Context) {
	children, err := h.parentService.ListChildren(c.Request.Context(), Caller(c))
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"list": children})
}

// ============================================================
// 额度相关接口
// ============================================================

// SetAllowanceRequest 金额允许为 0，用于清空额度
type SetAllowanceRequest struct {
	Child  string  `json:"child" binding:"required"`
	Amount *uint64 `json:"amount" binding:"required"`
}

// SetAllowance 家长设置孩子额度
// POST /api/v1/allowance/set
func (h *Handler) SetAllowance(c *gin.Context) {
	var req SetAllowanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	ok, err := h.allowanceService.SetAllowance(c.Request.Context(), Caller(c), req.Child, *req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": ok})
}

type SpendRequest struct {
	Amount uint64 `json:"amount"`
}

// Spend 孩子消费自己的额度
// POST /api/v1/allowance/spend
func (h *Handler) Spend(c *gin.Context) {
	var req SpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, "参数错误: "+err.Error())
		return
	}

	ok, err := h.allowanceService.Spend(c.Request.Context(), Caller(c), req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"ok": ok})
}

// GetAllowance 只读查询孩子额度
// GET /api/v1/allowance?child=xxx
func (h *Handler) GetAllowance(c *gin.Context) {
	child := c.Query("child")
	if child == "" {
		response.ParamError(c, "child 参数不能为空")
		return
	}

	info, err := h.allowanceService.GetAllowance(c.Request.Context(), child)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, info)
}

// ListTransactions 查询孩子的额度流水
// GET /api/v1/allowance/transactions?child=xxx&page=1&page_size=10
func (h *Handler) ListTransactions(c *gin.Context) {
	child := c.Query("child")
	if child == "" {
		response.ParamError(c, "child 参数不能为空")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := h.allowanceService.ListTransactions(c.Request.Context(), child, page, pageSize)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

// GetTransaction 按流水号查询单条流水
// GET /api/v1/allowance/transaction?transaction_no=xxx
func (h *Handler) GetTransaction(c *gin.Context) {
	transactionNo := c.Query("transaction_no")
	if transactionNo == "" {
		response.ParamError(c, "transaction_no 参数不能为空")
		return
	}

	trans, err := h.allowanceService.GetTransaction(c.Request.Context(), transactionNo)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, trans)
}

// Package shopping 購物清單、食譜排程與食材解析的 HTTP 處理器。
package shopping

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	shoppingService "recipe-planner/internal/core/shopping"
	"recipe-planner/internal/infrastructure/store"
	"recipe-planner/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CombineRequest 直接合併食材行；ingredients 為已拆好的欄位，lines 為自由文字
type CombineRequest struct {
	Ingredients []shoppingService.IngredientLine `json:"ingredients"`
	Lines       []string                         `json:"lines"`
}

// RecipeRequest 新增食譜
type RecipeRequest struct {
	Name        string                           `json:"name" binding:"required"`
	Ingredients []shoppingService.IngredientLine `json:"ingredients"`
	Lines       []string                         `json:"lines"`
}

// ScheduleRequest 將食譜排入某一天
type ScheduleRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
	On       string `json:"on" binding:"required"`
}

// ParseRequest 解析單行食材
type ParseRequest struct {
	Text string `json:"text" binding:"required"`
}

// ClassifyRequest 名稱分類
type ClassifyRequest struct {
	Names []string `json:"names" binding:"required"`
}

// ClassifyResponse 名稱 → 分類
type ClassifyResponse struct {
	Categories map[string]string `json:"categories"`
}

// HistoryResponse 歷史購物清單
type HistoryResponse struct {
	Lists []shoppingService.ShoppingList `json:"lists"`
}

// Handler 購物清單處理器
type Handler struct {
	service *shoppingService.Service
}

// NewHandler 創建購物清單處理器
func NewHandler(service *shoppingService.Service) *Handler {
	return &Handler{service: service}
}

// HandleCombine 合併請求中的食材行
func (h *Handler) HandleCombine(c *gin.Context) {
	var req CombineRequest
	if !bind(c, &req) {
		return
	}
	if req.Ingredients == nil && req.Lines == nil {
		common.RespondError(c, common.ErrInvalidRequest.Wrap(errors.New("ingredients or lines is required")))
		return
	}

	lines := append(req.Ingredients, parseLines(req.Lines)...)
	list, err := h.service.FromLines(c.Request.Context(), lines)
	if err != nil {
		common.RespondError(c, mapError(err))
		return
	}

	common.LogInfo("合併購物清單",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("lines", len(lines)),
		zap.Int("groups", len(list.Ingredients)),
	)
	c.JSON(http.StatusOK, list)
}

// HandleForRange 合併 start 到 end 之間排定的食譜
func (h *Handler) HandleForRange(c *gin.Context) {
	start, err := parseDay(c.Query("start"), "start")
	if err != nil {
		common.RespondError(c, err)
		return
	}
	end, err := parseDay(c.Query("end"), "end")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	list, err := h.service.ForRange(c.Request.Context(), start, end)
	if err != nil {
		common.RespondError(c, mapError(err))
		return
	}
	c.JSON(http.StatusOK, list)
}

// HandleHistory 最近產生的購物清單
func (h *Handler) HandleHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			common.RespondError(c, common.ErrInvalidRequest.Wrap(errors.New("limit must be a non-negative integer")))
			return
		}
		limit = n
	}

	lists, err := h.service.History(c.Request.Context(), limit)
	if err != nil {
		common.RespondError(c, mapError(err))
		return
	}
	if lists == nil {
		lists = []shoppingService.ShoppingList{}
	}
	c.JSON(http.StatusOK, HistoryResponse{Lists: lists})
}

// HandleAddRecipe 新增食譜
func (h *Handler) HandleAddRecipe(c *gin.Context) {
	var req RecipeRequest
	if !bind(c, &req) {
		return
	}

	recipe := &shoppingService.Recipe{
		Name:        req.Name,
		Ingredients: append(req.Ingredients, parseLines(req.Lines)...),
	}
	if err := h.service.AddRecipe(c.Request.Context(), recipe); err != nil {
		common.RespondError(c, mapError(err))
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// HandleSchedule 將食譜排入某一天
func (h *Handler) HandleSchedule(c *gin.Context) {
	var req ScheduleRequest
	if !bind(c, &req) {
		return
	}
	day, err := parseDay(req.On, "on")
	if err != nil {
		common.RespondError(c, err)
		return
	}

	if err := h.service.Schedule(c.Request.Context(), req.RecipeID, day); err != nil {
		common.RespondError(c, mapError(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"recipe_id": req.RecipeID,
		"on":        day.Format(shoppingService.DayLayout),
	})
}

// HandleParse 解析單行食材文字
func (h *Handler) HandleParse(c *gin.Context) {
	var req ParseRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, h.service.ParseIngredient(req.Text))
}

// HandleClassify 將名稱分類，未分類者為 "unknown"
func (h *Handler) HandleClassify(c *gin.Context) {
	var req ClassifyRequest
	if !bind(c, &req) {
		return
	}
	c.JSON(http.StatusOK, ClassifyResponse{Categories: h.service.Classify(req.Names)})
}

// bind 解析 JSON 請求體，失敗時已寫出錯誤響應
func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.RespondError(c, common.ErrBodyTooLarge.Wrap(err))
			return false
		}
		common.RespondError(c, common.ErrInvalidRequest.Wrap(err))
		return false
	}
	return true
}

func parseLines(texts []string) []shoppingService.IngredientLine {
	lines := make([]shoppingService.IngredientLine, 0, len(texts))
	for _, text := range texts {
		lines = append(lines, shoppingService.ParseLine(text))
	}
	return lines
}

func parseDay(s, field string) (time.Time, error) {
	if s == "" {
		return time.Time{}, common.ErrInvalidRequest.Wrap(errors.New(field + " is required"))
	}
	day, err := time.Parse(shoppingService.DayLayout, s)
	if err != nil {
		return time.Time{}, common.ErrInvalidDateRange.Wrap(err)
	}
	return day, nil
}

// mapError 將服務層錯誤轉成對外錯誤代碼
func mapError(err error) error {
	switch {
	case errors.Is(err, shoppingService.ErrInvalidRange):
		return common.ErrInvalidDateRange.Wrap(err)
	case errors.Is(err, shoppingService.ErrInvalidRecipe):
		return common.ErrInvalidRecipe.Wrap(err)
	case errors.Is(err, store.ErrNotFound):
		return common.ErrNotFound.Wrap(err)
	case errors.Is(err, context.DeadlineExceeded):
		return common.ErrGatewayTimeout.Wrap(err)
	default:
		return common.ErrStoreError.Wrap(err)
	}
}

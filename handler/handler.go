package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"
	"todo-api/database"
	"todo-api/model"
	"todo-api/validation"
)

// ErrorResponse 统一错误响应格式
type ErrorResponse struct {
	ErrorMessage string `json:"errorMessage"`
}

// UpdateItemRequest 更新待办事项请求体，三个字段都可省略
// done 用 RawMessage 保留"字段缺失"和"显式传 false/null"的区别
type UpdateItemRequest struct {
	Order *int            `json:"order,omitempty"`
	Done  json.RawMessage `json:"done,omitempty"`
	Value *string         `json:"value,omitempty"`
}

// Handler 处理器结构体
type Handler struct {
	db *database.DB
}

// 超时配置
const (
	ListTimeout   = 5 * time.Second // 列表查询超时
	CreateTimeout = 3 * time.Second // 创建超时
	UpdateTimeout = 3 * time.Second // 更新超时
	DeleteTimeout = 2 * time.Second // 删除超时
)

const notFoundMessage = "待办事项不存在"

// NewHandler 创建新的处理器
func NewHandler(db *database.DB) *Handler {
	return &Handler{db: db}
}

// sendJSON 发送JSON响应
func (h *Handler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(body); err != nil {
		// JSON编码失败，直接返回纯文本错误
		log.Printf("Failed to encode response: %v", err)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error: Failed to encode response"))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// Root 存活探针
// @Summary 存活探针
// @Description 返回固定的问候消息
// @Tags root
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) error {
	h.sendJSON(w, http.StatusOK, map[string]string{"message": "Hi!"})
	return nil
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreateItem 创建待办事项
// @Summary 创建待办事项
// @Description 校验 value 后创建一个新的待办事项，排在列表最前面
// @Tags todos
// @Accept json
// @Produce json
// @Param item body object true "待办事项内容 {value}"
// @Success 201 {object} map[string]model.Item
// @Failure 400 {object} handler.ErrorResponse
// @Failure 500 {object} handler.ErrorResponse
// @Router /todos [post]
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), CreateTimeout)
	defer cancel()

	defer r.Body.Close()
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 限制1MB

	// 校验请求体，失败时 *validation.Error 由错误处理中间件转成 400
	value, err := validation.CreateItem(r.Body)
	if err != nil {
		return err
	}

	// 新事项排在最前面：当前最大 order + 1
	max, err := h.db.FindMaxOrder(ctx)
	if err != nil {
		return err
	}

	item := model.NewItem(value, model.NextOrder(max))
	if err := h.db.InsertItem(ctx, item); err != nil {
		return err
	}

	h.sendJSON(w, http.StatusCreated, map[string]*model.Item{"item": item})
	return nil
}

// ListItems 获取待办事项列表
// @Summary 获取待办事项列表
// @Description 返回全部待办事项，按 order 降序排列
// @Tags todos
// @Produce json
// @Success 200 {object} map[string][]model.Item
// @Failure 500 {object} handler.ErrorResponse
// @Router /todos [get]
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), ListTimeout)
	defer cancel()

	items, err := h.db.ListItems(ctx)
	if err != nil {
		return err
	}

	h.sendJSON(w, http.StatusOK, map[string][]model.Item{"items": items})
	return nil
}

// UpdateItem 更新待办事项（排序/完成状态/内容）
// @Summary 更新待办事项
// @Description 根据 ID 更新排序、完成状态、内容，三个字段各自独立可选
// @Tags todos
// @Accept json
// @Produce json
// @Param id path string true "待办事项ID"
// @Param item body handler.UpdateItemRequest true "待办事项更新内容"
// @Success 200 {object} object
// @Failure 404 {object} handler.ErrorResponse
// @Failure 500 {object} handler.ErrorResponse
// @Router /todos/{id} [patch]
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), UpdateTimeout)
	defer cancel()

	defer r.Body.Close()

	id := r.PathValue("id")

	var req UpdateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	current, err := h.db.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		h.sendJSON(w, http.StatusNotFound, ErrorResponse{ErrorMessage: notFoundMessage})
		return nil
	}

	// 排序变更：order 为 0 时跳过（沿用原有行为）
	// 目标位置已被占用时交换两者的 order，先持久化被交换的一方
	if req.Order != nil && *req.Order != 0 {
		target, err := h.db.FindByOrder(ctx, *req.Order)
		if err != nil {
			return err
		}
		if target != nil {
			target.Order = current.Order
			if err := h.db.SaveItem(ctx, target); err != nil {
				return err
			}
		}
		current.Order = *req.Order
	}

	// 完成/取消完成：字段存在才生效，显式传 false 或 null 表示取消
	if len(req.Done) > 0 {
		current.SetDone(doneTruthy(req.Done))
	}

	// 内容变更：空字符串跳过（沿用原有行为）
	if req.Value != nil && *req.Value != "" {
		current.Value = *req.Value
	}

	if err := h.db.SaveItem(ctx, current); err != nil {
		return err
	}

	h.sendJSON(w, http.StatusOK, struct{}{})
	return nil
}

// doneTruthy 按 JSON 值的真值语义解释 done 字段
// false、null、0、"" 都视为取消完成
func doneTruthy(raw json.RawMessage) bool {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}

	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case float64:
		return v != 0
	case string:
		return v != ""
	default:
		return true
	}
}

// DeleteItem 删除待办事项
// @Summary 删除待办事项
// @Description 根据 ID 删除待办事项，硬删除
// @Tags todos
// @Produce json
// @Param id path string true "待办事项ID"
// @Success 200 {object} object
// @Failure 404 {object} handler.ErrorResponse
// @Failure 500 {object} handler.ErrorResponse
// @Router /todos/{id} [delete]
func (h *Handler) DeleteItem(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), DeleteTimeout)
	defer cancel()

	defer r.Body.Close()

	id := r.PathValue("id")

	// 删除前先确认存在，存储层不保证删除不存在的记录是安全的
	item, err := h.db.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		h.sendJSON(w, http.StatusNotFound, ErrorResponse{ErrorMessage: notFoundMessage})
		return nil
	}

	if err := h.db.DeleteItem(ctx, id); err != nil {
		return err
	}

	h.sendJSON(w, http.StatusOK, struct{}{})
	return nil
}

package model

import (
	"time"
)

// Item 表示一个待办事项
// 列表展示时 Order 越大越靠前
type Item struct {
	ID          string     `json:"id"`
	Value       string     `json:"value"`
	Order       int        `json:"order"`
	CompletedAt *time.Time `json:"completedAt"`
}

// NewItem 创建一个新的待办事项，ID 由存储层分配
func NewItem(value string, order int) *Item {
	return &Item{
		Value: value,
		Order: order,
	}
}

// NextOrder 计算新建事项的排序值：当前最大值 + 1，空存储时为 1
func NextOrder(max *Item) int {
	if max == nil {
		return 1
	}
	return max.Order + 1
}

// SetDone 标记完成或取消完成
// 完成状态只通过 CompletedAt 是否为 nil 表达，没有单独的布尔字段
func (i *Item) SetDone(done bool) {
	if !done {
		i.CompletedAt = nil
		return
	}
	now := time.Now()
	i.CompletedAt = &now
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

func main() {
	baseURL := "http://localhost:3000"

	// 等待服务器启动
	time.Sleep(2 * time.Second)

	fmt.Println("=== Todo API 冒烟测试 ===")

	// 测试1: 存活探针
	fmt.Println("1. 测试存活探针 /api/")
	TestEndpoint(baseURL, "GET", "/api/", nil)

	// 测试2: 获取空列表
	fmt.Println("\n2. 测试获取待办事项列表 /api/todos")
	TestEndpoint(baseURL, "GET", "/api/todos", nil)

	// 测试3: 创建两个待办事项
	fmt.Println("\n3. 测试创建待办事项")
	first := createItem(baseURL, "buy milk")
	second := createItem(baseURL, "walk dog")

	// 测试4: 再次获取列表，应按 order 降序
	fmt.Println("\n4. 再次获取待办事项列表")
	TestEndpoint(baseURL, "GET", "/api/todos", nil)

	// 测试5: 顺序交换，second 移到 order=1
	fmt.Println("\n5. 测试顺序交换")
	body, _ := json.Marshal(map[string]int{"order": 1})
	TestEndpoint(baseURL, "PATCH", "/api/todos/"+second, body)
	TestEndpoint(baseURL, "GET", "/api/todos", nil)

	// 测试6: 标记完成再取消
	fmt.Println("\n6. 测试完成/取消完成")
	body, _ = json.Marshal(map[string]bool{"done": true})
	TestEndpoint(baseURL, "PATCH", "/api/todos/"+first, body)
	body, _ = json.Marshal(map[string]bool{"done": false})
	TestEndpoint(baseURL, "PATCH", "/api/todos/"+first, body)

	// 测试7: 修改内容
	fmt.Println("\n7. 测试修改内容")
	body, _ = json.Marshal(map[string]string{"value": "buy oat milk"})
	TestEndpoint(baseURL, "PATCH", "/api/todos/"+first, body)

	// 测试8: 删除
	fmt.Println("\n8. 测试删除")
	TestEndpoint(baseURL, "DELETE", "/api/todos/"+first, nil)
	TestEndpoint(baseURL, "DELETE", "/api/todos/"+second, nil)
	TestEndpoint(baseURL, "GET", "/api/todos", nil)

	// 测试9: 校验失败
	fmt.Println("\n9. 测试校验失败 (空 value)")
	body, _ = json.Marshal(map[string]string{"value": ""})
	TestEndpoint(baseURL, "POST", "/api/todos", body)
}

// createItem 创建一个待办事项并返回它的 id
func createItem(baseURL, value string) string {
	payload, _ := json.Marshal(map[string]string{"value": value})
	resp, err := http.Post(baseURL+"/api/todos", "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("   请求失败: %v\n", err)
		return ""
	}
	defer resp.Body.Close()

	var result struct {
		Item struct {
			ID    string `json:"id"`
			Order int    `json:"order"`
		} `json:"item"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		fmt.Printf("   解析失败: %v\n", err)
		return ""
	}
	fmt.Printf("   创建成功: %q id=%s order=%d\n", value, result.Item.ID, result.Item.Order)
	return result.Item.ID
}

// TestEndpoint 请求一个端点并打印状态码和响应体
func TestEndpoint(baseURL, method, path string, body []byte) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequest(method, baseURL+path, reader)
	if err != nil {
		fmt.Printf("   构造请求失败: %v\n", err)
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Printf("   请求失败: %v\n", err)
		return
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	fmt.Printf("   %s %s -> %d %s\n", method, path, resp.StatusCode, bytes.TrimSpace(data))
}

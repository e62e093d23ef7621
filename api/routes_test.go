package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"todo-api/database"
	"todo-api/handler"
)

type itemJSON struct {
	ID          string  `json:"id"`
	Value       string  `json:"value"`
	Order       int     `json:"order"`
	CompletedAt *string `json:"completedAt"`
}

func newTestServer(t *testing.T) (*http.ServeMux, *database.DB) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "todos.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return SetupRoutes(handler.NewHandler(db), ""), db
}

func doRequest(t *testing.T, mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func createItem(t *testing.T, mux *http.ServeMux, value string) itemJSON {
	t.Helper()

	rec := doRequest(t, mux, http.MethodPost, "/api/todos", `{"value":"`+value+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create %q: status = %d, body = %s", value, rec.Code, rec.Body.String())
	}

	var resp struct {
		Item itemJSON `json:"item"`
	}
	decodeBody(t, rec, &resp)
	if resp.Item.ID == "" {
		t.Fatalf("create %q: missing id in %s", value, rec.Body.String())
	}
	return resp.Item
}

func listItems(t *testing.T, mux *http.ServeMux) []itemJSON {
	t.Helper()

	rec := doRequest(t, mux, http.MethodGet, "/api/todos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Items []itemJSON `json:"items"`
	}
	decodeBody(t, rec, &resp)
	return resp.Items
}

func TestRoot(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := doRequest(t, mux, http.MethodGet, "/api/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["message"] != "Hi!" {
		t.Errorf(`message = %q, want "Hi!"`, resp["message"])
	}
}

func TestCreateAssignsSequentialOrders(t *testing.T) {
	mux, _ := newTestServer(t)

	first := createItem(t, mux, "buy milk")
	if first.Order != 1 {
		t.Errorf("first item order = %d, want 1", first.Order)
	}
	if first.CompletedAt != nil {
		t.Errorf("new item should not be completed, got %v", *first.CompletedAt)
	}

	second := createItem(t, mux, "walk dog")
	if second.Order != 2 {
		t.Errorf("second item order = %d, want 2", second.Order)
	}
}

func TestCreateValidation(t *testing.T) {
	mux, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing value", `{}`},
		{"empty value", `{"value":""}`},
		{"too long", `{"value":"` + strings.Repeat("a", 51) + `"}`},
		{"non-string", `{"value":42}`},
		{"unknown field", `{"value":"ok","done":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, mux, http.MethodPost, "/api/todos", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}

			var resp map[string]string
			decodeBody(t, rec, &resp)
			if resp["errorMessage"] == "" {
				t.Error("400 response should carry errorMessage")
			}
		})
	}

	// 校验失败不能留下任何记录
	if items := listItems(t, mux); len(items) != 0 {
		t.Errorf("rejected creates must not persist, got %d items", len(items))
	}
}

func TestListDescending(t *testing.T) {
	mux, _ := newTestServer(t)

	for _, value := range []string{"a", "b", "c"} {
		createItem(t, mux, value)
	}

	items := listItems(t, mux)
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	for i := 1; i < len(items); i++ {
		if items[i-1].Order <= items[i].Order {
			t.Errorf("items not strictly descending: %d before %d", items[i-1].Order, items[i].Order)
		}
	}
}

// 规格场景：buy milk(1), walk dog(2)，把 walk dog 移到 1，两者顺序互换
func TestReorderSwap(t *testing.T) {
	mux, _ := newTestServer(t)

	milk := createItem(t, mux, "buy milk")
	dog := createItem(t, mux, "walk dog")

	rec := doRequest(t, mux, http.MethodPatch, "/api/todos/"+dog.ID, `{"order":1}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "{}" {
		t.Errorf("patch body = %s, want {}", body)
	}

	items := listItems(t, mux)
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].ID != milk.ID || items[0].Order != 2 {
		t.Errorf("first listed = %q order %d, want buy milk order 2", items[0].Value, items[0].Order)
	}
	if items[1].ID != dog.ID || items[1].Order != 1 {
		t.Errorf("second listed = %q order %d, want walk dog order 1", items[1].Value, items[1].Order)
	}
}

func TestReorderToFreeSlot(t *testing.T) {
	mux, _ := newTestServer(t)

	milk := createItem(t, mux, "buy milk")
	dog := createItem(t, mux, "walk dog")

	rec := doRequest(t, mux, http.MethodPatch, "/api/todos/"+milk.ID, `{"order":7}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}

	items := listItems(t, mux)
	if items[0].ID != milk.ID || items[0].Order != 7 {
		t.Errorf("mover = %q order %d, want buy milk order 7", items[0].Value, items[0].Order)
	}
	if items[1].ID != dog.ID || items[1].Order != 2 {
		t.Errorf("other item changed: %q order %d, want walk dog order 2", items[1].Value, items[1].Order)
	}
}

// order 为 0 不触发排序变更（沿用原有行为）
func TestReorderZeroIgnored(t *testing.T) {
	mux, _ := newTestServer(t)

	milk := createItem(t, mux, "buy milk")

	rec := doRequest(t, mux, http.MethodPatch, "/api/todos/"+milk.ID, `{"order":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}

	items := listItems(t, mux)
	if items[0].Order != 1 {
		t.Errorf("order = %d, want unchanged 1", items[0].Order)
	}
}

func TestDoneTriState(t *testing.T) {
	mux, _ := newTestServer(t)

	milk := createItem(t, mux, "buy milk")

	// done: true 记录时间戳
	doRequest(t, mux, http.MethodPatch, "/api/todos/"+milk.ID, `{"done":true}`)
	if items := listItems(t, mux); items[0].CompletedAt == nil {
		t.Fatal("done:true should set completedAt")
	}

	// 省略 done 不影响完成状态
	doRequest(t, mux, http.MethodPatch, "/api/todos/"+milk.ID, `{"value":"buy oat milk"}`)
	items := listItems(t, mux)
	if items[0].CompletedAt == nil {
		t.Fatal("omitting done must leave completedAt unchanged")
	}
	if items[0].Value != "buy oat milk" {
		t.Errorf("value = %q, want buy oat milk", items[0].Value)
	}

	// 显式 done: false 清除时间戳
	doRequest(t, mux, http.MethodPatch, "/api/todos/"+milk.ID, `{"done":false}`)
	if items := listItems(t, mux); items[0].CompletedAt != nil {
		t.Fatal("done:false should clear completedAt")
	}
}

func TestUpdateNotFound(t *testing.T) {
	mux, _ := newTestServer(t)

	rec := doRequest(t, mux, http.MethodPatch, "/api/todos/no-such-id", `{"order":1}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["errorMessage"] == "" {
		t.Error("404 response should carry errorMessage")
	}
}

func TestDelete(t *testing.T) {
	mux, _ := newTestServer(t)

	milk := createItem(t, mux, "buy milk")

	rec := doRequest(t, mux, http.MethodDelete, "/api/todos/"+milk.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "{}" {
		t.Errorf("delete body = %s, want {}", body)
	}

	if items := listItems(t, mux); len(items) != 0 {
		t.Errorf("deleted item still listed: %+v", items)
	}

	// 再次删除返回 404
	rec = doRequest(t, mux, http.MethodDelete, "/api/todos/"+milk.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", rec.Code)
	}
}

func TestStorageFailureNormalizedTo500(t *testing.T) {
	mux, db := newTestServer(t)

	// 关闭连接模拟存储层故障
	db.Close()

	rec := doRequest(t, mux, http.MethodGet, "/api/todos", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["errorMessage"] == "" {
		t.Error("500 response should carry a generic errorMessage")
	}
	// 不能把内部错误细节泄露给客户端
	if strings.Contains(resp["errorMessage"], "sql") || strings.Contains(resp["errorMessage"], "database") {
		t.Errorf("500 message leaks internals: %q", resp["errorMessage"])
	}
}

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "todo-api/docs"
	"todo-api/handler"
	"todo-api/validation"
)

const serverErrorMessage = "服务器发生错误"

// apiHandler 业务处理函数，失败时返回 error 交给统一的错误处理中间件，
// 而不是在各自内部拼装错误响应
type apiHandler func(http.ResponseWriter, *http.Request) error

// normalizeErrors 统一错误处理中间件
// 校验错误返回 400，其余一律记录日志后返回通用的 500，不向客户端泄露内部细节
func normalizeErrors(next apiHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := next(w, r)
		if err == nil {
			return
		}

		var verr *validation.Error
		if errors.As(err, &verr) {
			sendError(w, http.StatusBadRequest, verr.Message)
			return
		}

		log.Printf("%s %s failed: %v", r.Method, r.URL.Path, err)
		sendError(w, http.StatusInternalServerError, serverErrorMessage)
	}
}

func sendError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(handler.ErrorResponse{ErrorMessage: message})
}

// logMiddleware 记录每个请求的 URL 和时间
func logMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Request URL: %s - %s", r.URL.Path, time.Now().Format(time.RFC3339))
		next(w, r)
	}
}

// corsMiddleware 处理 CORS 跨域请求
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		// 处理预检请求
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// recoverMiddleware 捕获 panic 防止服务崩溃，响应格式与其他错误保持一致
func recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("panic recovered: %v", err)
				sendError(w, http.StatusInternalServerError, serverErrorMessage)
			}
		}()
		next(w, r)
	}
}

// chain 链接多个中间件
func chain(f http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		f = middlewares[i](f)
	}
	return f
}

// SetupRoutes 注册全部路由
// assetsDir 非空时额外提供静态文件服务
func SetupRoutes(h *handler.Handler, assetsDir string) *http.ServeMux {
	mux := http.NewServeMux()

	withMiddlewares := func(f apiHandler) http.HandlerFunc {
		return chain(normalizeErrors(f), logMiddleware, corsMiddleware, recoverMiddleware)
	}

	optionsHandler := func(w http.ResponseWriter, r *http.Request) error {
		w.WriteHeader(http.StatusOK)
		return nil
	}

	mux.HandleFunc("GET /api/{$}", withMiddlewares(h.Root))

	mux.HandleFunc("POST /api/todos", withMiddlewares(h.CreateItem))
	mux.HandleFunc("GET /api/todos", withMiddlewares(h.ListItems))
	mux.HandleFunc("OPTIONS /api/todos", withMiddlewares(optionsHandler))

	mux.HandleFunc("PATCH /api/todos/{id}", withMiddlewares(h.UpdateItem))
	mux.HandleFunc("DELETE /api/todos/{id}", withMiddlewares(h.DeleteItem))
	mux.HandleFunc("OPTIONS /api/todos/{id}", withMiddlewares(optionsHandler))

	mux.HandleFunc("/health", h.HealthCheck)

	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	if assetsDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(assetsDir)))
	}

	return mux
}

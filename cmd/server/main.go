package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"todo-api/api"
	"todo-api/config"
	"todo-api/database"
	"todo-api/handler"
)

func main() {
	var configPath string
	var port int
	var dbPath string

	rootCmd := &cobra.Command{
		Use:          "todo-api",
		Short:        "一个极简的待办事项 REST API",
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if port != 0 {
				cfg.Port = port
			}
			if dbPath != "" {
				cfg.DBPath = dbPath
			}
			return run(cfg)
		},
	}

	rootCmd.Flags().StringVarP(&configPath, "config", "c", "todo-api.yaml", "YAML 配置文件路径")
	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "监听端口（覆盖配置文件）")
	rootCmd.Flags().StringVar(&dbPath, "db", "", "SQLite 数据库路径（覆盖配置文件）")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	// 初始化数据库
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	// 创建处理器
	h := handler.NewHandler(db)

	// 设置路由
	mux := api.SetupRoutes(h, cfg.AssetsDir)

	// 启动服务器
	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: mux,
	}

	// 优雅关闭
	go func() {
		log.Printf("Server started on http://localhost%s", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := server.Close(); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	return nil
}

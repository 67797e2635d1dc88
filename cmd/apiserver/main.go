package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hostelhub/internal/allowlist"
	"hostelhub/internal/config"
	"hostelhub/internal/handlers/apiserver"
	"hostelhub/internal/middleware"
	appRedis "hostelhub/internal/redis"
	"hostelhub/internal/services"
	"hostelhub/internal/storage"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	redisDriver "github.com/redis/go-redis/v9"
)

func main() {
	// 1. 加载配置
	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
	}
	log.Println("API 服务器配置加载成功。")

	// 2. 初始化数据库连接
	db, err := storage.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
	}
	log.Println("API 服务器数据库连接成功。")

	// (可选) 表结构迁移
	if err := storage.AutoMigrateTables(db); err != nil {
		log.Printf("警告：数据库表迁移可能失败: %v", err)
	} else {
		log.Println("数据库表迁移成功。")
	}

	// 3. 初始化 Redis Client
	redisClient := redisDriver.NewClient(&redisDriver.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("无法连接到 Redis: %v", err)
	}
	log.Println("成功连接到 Redis")

	// 4. 初始化 TokenBlacklist 服务
	tokenBlacklistService := appRedis.NewRedisTokenBlacklist(redisClient)

	// 5. 初始化注册允许名单
	allowStore := allowlist.NewStore(cfg.Allowlist.Path)
	log.Printf("允许名单已就绪，共 %d 个邮箱。", len(allowStore.Emails()))

	// 6. 初始化 Repositories
	userRepo := storage.NewGormUserRepository(db)
	groupRepo := storage.NewGormGroupRepository(db)
	joinReqRepo := storage.NewGormJoinRequestRepository(db)
	postRepo := storage.NewGormPostRepository(db)
	noticeRepo := storage.NewGormNoticeRepository(db)

	// 7. 初始化 Services
	authService := services.NewAuthService(userRepo, allowStore, cfg)
	userService := services.NewUserService(userRepo, groupRepo)
	groupService := services.NewGroupService(groupRepo, joinReqRepo, userRepo)
	postService := services.NewPostService(postRepo, groupRepo)
	noticeService := services.NewNoticeService(noticeRepo, groupRepo)

	// 8. 初始化 Handlers
	authHandler := apiserver.NewAuthHandler(authService, tokenBlacklistService)
	userHandler := apiserver.NewUserHandler(userService)
	groupHandler := apiserver.NewGroupHandler(groupService)
	joinReqHandler := apiserver.NewJoinRequestHandler(groupService)
	postHandler := apiserver.NewPostHandler(postService)
	noticeHandler := apiserver.NewNoticeHandler(noticeService)

	// 9. 设置 HTTP 路由
	r := mux.NewRouter()

	// 9.1 认证路由
	authRouter := r.PathPrefix("/auth").Subrouter()
	authRouter.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// 9.2 公开路由 (不需要认证)
	r.HandleFunc("/groups", groupHandler.List).Methods(http.MethodGet)
	r.HandleFunc("/groups/{groupID:[0-9]+}", groupHandler.GetDetails).Methods(http.MethodGet)
	r.HandleFunc("/groups/{groupID:[0-9]+}/posts", postHandler.List).Methods(http.MethodGet)

	// 创建 AuthMiddleware 实例
	authMW := middleware.AuthMiddleware(cfg.Auth.JWTSecretKey, tokenBlacklistService)

	// 9.3 受保护路由 (需要认证)
	apiRouter := r.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(authMW)

	// 登出需要认证来获取 JTI
	apiRouter.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)
	apiRouter.HandleFunc("/auth/protected", authHandler.Protected).Methods(http.MethodGet)

	// 用户路由
	apiRouter.HandleFunc("/user/profile", userHandler.GetProfile).Methods(http.MethodGet)
	apiRouter.HandleFunc("/user/profile", userHandler.UpdateProfile).Methods(http.MethodPut)
	apiRouter.HandleFunc("/user/groups", userHandler.ListMyGroups).Methods(http.MethodGet)

	// 群组与成员路由
	apiRouter.HandleFunc("/groups", groupHandler.Create).Methods(http.MethodPost)
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/membership", groupHandler.MembershipState).Methods(http.MethodGet)
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/members", groupHandler.ListMembers).Methods(http.MethodGet)
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/members", groupHandler.RemoveMember).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/leave", groupHandler.Leave).Methods(http.MethodPost)

	// 加入申请路由
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/join", joinReqHandler.Create).Methods(http.MethodPost)
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/requests", joinReqHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/requests/{requestID:[0-9]+}/accept", joinReqHandler.Accept).Methods(http.MethodPut)
	apiRouter.HandleFunc("/requests/{requestID:[0-9]+}/decline", joinReqHandler.Decline).Methods(http.MethodPut)

	// 帖子路由
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/posts", postHandler.Create).Methods(http.MethodPost)

	// 公告路由
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/notices", noticeHandler.List).Methods(http.MethodGet)
	apiRouter.HandleFunc("/groups/{groupID:[0-9]+}/notices", noticeHandler.Create).Methods(http.MethodPost)
	apiRouter.HandleFunc("/notices/{noticeID:[0-9]+}", noticeHandler.Update).Methods(http.MethodPut)
	apiRouter.HandleFunc("/notices/{noticeID:[0-9]+}", noticeHandler.Delete).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/notices/{noticeID:[0-9]+}/pin", noticeHandler.TogglePin).Methods(http.MethodPatch)

	// 10. 启动 HTTP 服务器并实现优雅关闭
	serverAddr := fmt.Sprintf("%s:%s", cfg.APIServer.Host, cfg.APIServer.Port)

	// 定义 CORS 选项，从配置中读取
	corsOptions := []handlers.CORSOption{
		handlers.AllowedOrigins(cfg.APIServer.CORS.AllowedOrigins),
		handlers.AllowedMethods(cfg.APIServer.CORS.AllowedMethods),
		handlers.AllowedHeaders(cfg.APIServer.CORS.AllowedHeaders),
		handlers.ExposedHeaders(cfg.APIServer.CORS.ExposedHeaders),
		handlers.MaxAge(cfg.APIServer.CORS.MaxAge),
	}
	if cfg.APIServer.CORS.AllowCredentials {
		corsOptions = append(corsOptions, handlers.AllowCredentials())
	}

	// 将主路由器 r 包装在 CORS 中间件中
	corsHandler := handlers.CORS(corsOptions...)(r)

	srv := &http.Server{
		Addr:           serverAddr,
		Handler:        corsHandler,
		ReadTimeout:    cfg.APIServer.ReadTimeout,
		WriteTimeout:   cfg.APIServer.WriteTimeout,
		MaxHeaderBytes: cfg.APIServer.MaxHeaderBytes,
		IdleTimeout:    time.Second * 60,
	}

	go func() {
		log.Printf("API 服务器启动于 %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("API 服务器启动失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到关闭信号，正在关闭 API 服务器...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("API 服务器强制关闭: %v", err)
	}

	log.Println("API 服务器已成功关闭")
}

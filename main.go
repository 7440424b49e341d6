package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TOPBARD/Connect-Hub/global"
	"github.com/TOPBARD/Connect-Hub/logger"
	mid "github.com/TOPBARD/Connect-Hub/middleware"
	"github.com/TOPBARD/Connect-Hub/module/messaging"
	"github.com/TOPBARD/Connect-Hub/module/user"
	"github.com/TOPBARD/Connect-Hub/service/gateway"
	"github.com/TOPBARD/Connect-Hub/service/media"
	"github.com/TOPBARD/Connect-Hub/service/mgo"
	redis "github.com/TOPBARD/Connect-Hub/service/storage/redis"
	"github.com/TOPBARD/Connect-Hub/tools/ids"
	"github.com/TOPBARD/Connect-Hub/tools/safe"
)

func main() {
	if err := global.Load(); err != nil {
		logger.Error("load config", zap.Error(err))
		return
	}
	ids.SetNodeID(global.Config.NodeID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Mongo: connect in the background, gate startup on first readiness.
	mgo.StartAsync(ctx, mgo.Config{
		Uri:      global.Config.MongoURI,
		Database: global.Config.MongoDB,
	})
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := mgo.WaitReady(waitCtx); err != nil {
		logger.Error("mongo not ready", zap.Error(err), zap.NamedError("last", mgo.Err()))
		return
	}
	if err := mgo.EnsureIndexes(ctx); err != nil {
		logger.Error("ensure indexes", zap.Error(err))
		return
	}

	// Redis presence mirror is optional.
	if global.RedisEnabled() {
		if err := redis.InitRedis(redis.Config{
			Addr:     global.Config.RedisAddr,
			Password: global.Config.RedisPassword,
			DB:       global.Config.RedisDB,
		}); err != nil {
			logger.Warn("redis init failed, presence mirror disabled", zap.Error(err))
		}
	}

	var uploader media.Uploader = media.Noop{}
	if global.Config.ImagekitEndpoint != "" {
		uploader = media.NewImageKitClient(
			global.Config.ImagekitEndpoint,
			global.Config.ImagekitPrivateKey,
			global.Config.ImagekitFolder,
		)
	}

	gw := gateway.NewServer(time.Duration(global.Config.PresenceTTLSeconds) * time.Second)
	svc := messaging.NewService(messaging.NewStore(), user.NewStore(mgo.GetDB()), gw, uploader)
	gw.Disp().Register(messaging.NewSeenHandler(svc))

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mid.Origin(global.Config.FrontendURL))
	messaging.RegisterRoutes(r, messaging.NewHandler(svc, gw), gw)

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(global.Config.Port),
		Handler: r,
	}
	safe.SafeGo(func() {
		logger.Infof("connect-hub messaging listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", zap.Error(err))
			stop()
		}
	})

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = srv.Shutdown(shutdownCtx)
	gw.Close()
	_ = redis.CloseRedis()
}

package api

import (
	"github.com/gin-gonic/gin"
	"github.com/timmy/tubevault/internal/api/handler"
	"github.com/timmy/tubevault/internal/api/middleware"
	"github.com/timmy/tubevault/internal/logger"
)

// RouterConfig carries what SetupRouter needs besides the service.
type RouterConfig struct {
	Mode           string
	AllowedOrigins []string
	Logger         *logger.Logger
}

// SetupRouter configures the Gin router with all routes.
func SetupRouter(videos handler.VideoService, cfg RouterConfig) *gin.Engine {
	switch cfg.Mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.GetDefault()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.AllowedOrigins))

	healthHandler := handler.NewHealthHandler()
	videoHandler := handler.NewVideoHandler(videos)
	searchHandler := handler.NewSearchHandler(videos)
	generateHandler := handler.NewGenerateHandler(videos)

	r.GET("/health", healthHandler.Health)

	r.GET("/videos", videoHandler.ListVideos)
	r.POST("/videos", videoHandler.AddVideo)
	r.DELETE("/videos/:video_id", videoHandler.DeleteVideo)

	r.GET("/search", searchHandler.SearchGet)
	r.POST("/search", searchHandler.Search)

	r.POST("/generate", generateHandler.Generate)

	return r
}

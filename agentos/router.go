package agentos

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agentcookbook/gemini-agents/observability"
)

func (o *AgentOS) newRouter() *gin.Engine {
	engine := gin.New()

	engine.Use(recovery(o.logger))
	engine.Use(requestID())
	engine.Use(corsMiddleware(o.cfg.CORS))
	if o.cfg.Tracing.Enabled {
		engine.Use(tracing(o.cfg.ID)...)
	}
	if o.cfg.Metrics.Enabled {
		engine.Use(observability.GinMetrics())
	}
	engine.Use(accessLog(o.logger))

	engine.GET("/health", o.health)
	engine.GET("/config", o.config)
	if o.cfg.Metrics.Enabled {
		path := o.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		engine.GET(path, gin.WrapH(promhttp.Handler()))
	}

	for _, kind := range []Kind{KindAgent, KindTeam, KindWorkflow} {
		g := engine.Group("/" + string(kind) + "s")
		g.GET("", o.listComponents(kind))
		g.GET("/:id", o.getComponent(kind))
		g.POST("/:id/runs", o.createRun(kind))
	}

	sessions := engine.Group("/sessions")
	{
		sessions.GET("", o.listSessions)
		sessions.GET("/:id", o.getSession)
		sessions.GET("/:id/runs", o.listSessionRuns)
		sessions.DELETE("/:id", o.deleteSession)
	}
	engine.GET("/memories", o.listMemories)

	return engine
}

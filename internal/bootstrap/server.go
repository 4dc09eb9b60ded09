package bootstrap

import (
	"context"
	"net/http"

	"github.com/eleven-am/triage-client/internal/audio"
	"github.com/eleven-am/triage-client/internal/monitor"
	"github.com/eleven-am/triage-client/internal/playback"
	"github.com/eleven-am/triage-client/internal/transport"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/fx"
)

const version = "1.0.0"

func NewEchoServer() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	return e
}

func ProvideMonitorHandler(conn *transport.Conn, capture *audio.Capture, sched *playback.Scheduler) *monitor.Handler {
	return monitor.NewHandler(conn, capture, sched, version)
}

func RegisterMonitorRoutes(e *echo.Echo, h *monitor.Handler) {
	h.RegisterRoutes(e)
}

func StartServer(lc fx.Lifecycle, e *echo.Echo, cfg *Config) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := e.Start(cfg.MonitorAddr); err != nil && err != http.ErrServerClosed {
					e.Logger.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return e.Shutdown(ctx)
		},
	})
}

var MonitorModule = fx.Options(
	fx.Provide(NewEchoServer, ProvideMonitorHandler),
	fx.Invoke(RegisterMonitorRoutes, StartServer),
)

func Run() {
	fx.New(
		fx.Provide(LoadConfig),
		ClientModule,
		MonitorModule,
	).Run()
}

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/semkernel/weather"
	"github.com/spf13/cobra"
)

func weatherServerCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "weather-server",
		Short: "Run the travel weather microservice",
		Long: `Serves GET /countries/{country}/{city}/{month} with the average high and
low temperature, plus /healthz and /metrics. Stops on SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.WeatherAddr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := weather.NewServer(func(o *weather.ServerOptions) {
				o.Addr = addr
				o.Logger = a.zl
			})
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: WEATHER_ADDR)")
	return cmd
}

// Command lookup prints the current hour's weather for a place name:
//
//	lookup New York
//
// On any failure it prints nothing and exits 1.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"go.uber.org/zap"

	"github.com/kjstillabower/current-weather-service/internal/client"
	"github.com/kjstillabower/current-weather-service/internal/config"
	"github.com/kjstillabower/current-weather-service/internal/models"
	"github.com/kjstillabower/current-weather-service/internal/observability"
	"github.com/kjstillabower/current-weather-service/internal/service"
	"github.com/kjstillabower/current-weather-service/internal/validation"
)

func main() {
	logger, err := observability.NewCLILogger()
	if err != nil {
		os.Exit(1)
	}

	cfg, err := config.Load()
	if errors.Is(err, config.ErrConfigNotFound) {
		cfg = config.Default()
	} else if err != nil {
		logger.Error("config", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], cfg, logger, os.Stdout)
	stop()
	_ = observability.FlushTelemetry(context.Background(), logger)
	os.Exit(code)
}

// run resolves the place named by args and writes the snapshot to out. It
// returns the process exit code.
func run(ctx context.Context, args []string, cfg *config.Config, logger *zap.Logger, out io.Writer) int {
	place, err := validation.ValidateLocation(strings.Join(args, " "), cfg.LocationMinLength, cfg.LocationMaxLength)
	if err != nil {
		logger.Error("invalid place name", zap.Strings("args", args), zap.Error(err))
		return 1
	}

	om, err := client.NewOpenMeteoClient(cfg.GeocodingURL, cfg.ForecastURL, cfg.UpstreamTimeout)
	if err != nil {
		logger.Error("open-meteo client", zap.Error(err))
		return 1
	}
	snap := service.NewWeatherService(om, om, logger).Lookup(ctx, place)
	if snap == nil {
		return 1
	}
	render(out, snap)
	return 0
}

func render(out io.Writer, snap *models.WeatherSnapshot) {
	fmt.Fprintf(out, "Temperature: %g°C\n", snap.Temperature)
	fmt.Fprintf(out, "Condition:   %s\n", snap.Condition)
	fmt.Fprintf(out, "Humidity:    %d%%\n", snap.Humidity)
	fmt.Fprintf(out, "Wind speed:  %g km/h\n", snap.WindSpeed)
}


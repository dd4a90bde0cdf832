package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	atrealtime "github.com/theoremus-urban-solutions/at-realtime"
	"github.com/theoremus-urban-solutions/at-realtime/config"
	"github.com/theoremus-urban-solutions/at-realtime/converter"
	"github.com/theoremus-urban-solutions/at-realtime/formatter"
	"github.com/theoremus-urban-solutions/at-realtime/gtfsrt"
	"github.com/theoremus-urban-solutions/at-realtime/internal"
)

func main() {
	app := &cli.App{
		Name:  "at-realtime",
		Usage: "Auckland Transport realtime trip updates and vehicle positions",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "config file (default config.yml or ./config/config.yml)"},
			&cli.StringFlag{Name: "log-level", Usage: "overrides logging.level"},
			&cli.BoolFlag{Name: "log-pretty", Usage: "human readable logs"},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "combined",
				Usage:  "fetch both feeds and print vehicles with their trip update",
				Flags:  append(outputFlags(), mergeFlags()...),
				Action: runCombined,
			},
			{
				Name:  "trip-updates",
				Usage: "fetch and print the trip updates feed",
				Flags: append(outputFlags(), &cli.StringFlag{Name: "file", Usage: "read a saved response (path or URL) instead of the API"}),
				Action: func(c *cli.Context) error {
					return runSingle(c, gtfsrt.FeedTripUpdates)
				},
			},
			{
				Name:  "vehicle-positions",
				Usage: "fetch and print the vehicle positions feed",
				Flags: append(outputFlags(), &cli.StringFlag{Name: "file", Usage: "read a saved response (path or URL) instead of the API"}),
				Action: func(c *cli.Context) error {
					return runSingle(c, gtfsrt.FeedVehiclePositions)
				},
			},
			{
				Name:   "serve",
				Usage:  "poll both feeds and serve the merged snapshot over HTTP",
				Flags:  []cli.Flag{&cli.IntFlag{Name: "port", Usage: "overrides server.port"}},
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func outputFlags() []cli.Flag {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return []cli.Flag{
		&cli.StringFlag{Name: "format", Value: string(formatter.FormatJSON), Usage: strings.Join(names, "|")},
		&cli.StringSliceFlag{Name: "trip-id", Usage: "only these trip ids (repeatable)"},
		&cli.StringSliceFlag{Name: "vehicle-id", Usage: "only these vehicle ids (repeatable)"},
	}
}

func mergeFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "join-by", Usage: "tripId|entityId (overrides merge.joinBy)"},
		&cli.StringFlag{Name: "tu-file", Usage: "saved trip updates response (path or URL)"},
		&cli.StringFlag{Name: "vp-file", Usage: "saved vehicle positions response (path or URL)"},
	}
}

func setup(c *cli.Context) error {
	var paths []string
	if p := c.String("config"); p != "" {
		paths = append(paths, p)
	}
	if err := config.LoadAppConfig(paths...); err != nil {
		return err
	}

	level := config.Config.Logging.Level
	if l := c.String("log-level"); l != "" {
		level = l
	}
	internal.InitLogging(level, config.Config.Logging.Pretty || c.Bool("log-pretty"))
	return nil
}

func newClient(cfg config.AppConfig) (*gtfsrt.Client, error) {
	if cfg.API.APIKey == "" {
		return nil, fmt.Errorf("no API key: set %s or api.apiKey", config.EnvAPIKey)
	}
	opts := []gtfsrt.ClientOption{
		gtfsrt.WithBaseURL(cfg.API.BaseURL),
		gtfsrt.WithFeedPaths(cfg.Feeds.TripUpdatesPath, cfg.Feeds.VehiclePositionsPath),
		gtfsrt.WithFetchHook(func(feed string, elapsed time.Duration, err error) {
			log.Debug().Str("feed", feed).Dur("elapsed", elapsed).AnErr("error", err).Msg("fetched")
		}),
	}
	if cfg.API.TimeoutMS > 0 {
		opts = append(opts, gtfsrt.WithTimeout(time.Duration(cfg.API.TimeoutMS)*time.Millisecond))
	}
	return gtfsrt.NewClient(cfg.API.APIKey, opts...), nil
}

func siriOptions(cfg config.AppConfig) converter.Options {
	return converter.Options{
		ProducerRef:    cfg.Siri.ProducerRef,
		ReadIntervalMS: int64(cfg.Poller.ReadIntervalMS),
		NormalizeIDs:   cfg.Merge.NormalizeIDs,
		FieldMutators: converter.FieldMutators{
			StopPointRef: cfg.Siri.FieldMutators.StopPointRef,
			LineRef:      cfg.Siri.FieldMutators.LineRef,
		},
	}
}

func filterFrom(c *cli.Context) gtfsrt.Filter {
	return gtfsrt.Filter{TripIDs: c.StringSlice("trip-id"), VehicleIDs: c.StringSlice("vehicle-id")}
}

func runCombined(c *cli.Context) error {
	cfg := config.Config
	format, err := formatter.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	joinBy := cfg.Merge.JoinBy
	if j := c.String("join-by"); j != "" {
		joinBy = j
	}
	key, err := gtfsrt.ParseJoinKey(joinBy)
	if err != nil {
		return err
	}

	var combined *gtfsrt.Combined
	tuFile, vpFile := c.String("tu-file"), c.String("vp-file")
	switch {
	case tuFile != "" && vpFile != "":
		// saved responses are already filtered, so --trip-id and --vehicle-id are ignored
		tu, vp, err := newFetcher().fetchBoth(c.Context, tuFile, vpFile)
		if err != nil {
			return err
		}
		combined, err = gtfsrt.Merge(tu, vp, gtfsrt.WithJoinKey(key))
		if err != nil {
			return err
		}
	case tuFile != "" || vpFile != "":
		return errors.New("--tu-file and --vp-file must be given together")
	default:
		client, err := newClient(cfg)
		if err != nil {
			return err
		}
		combined, err = client.FetchCombined(c.Context, filterFrom(c), gtfsrt.WithJoinKey(key))
		if err != nil {
			return err
		}
	}

	log.Debug().
		Int("merged", combined.Stats.Merged).
		Int("dropped_no_trip", combined.Stats.DroppedNoTrip).
		Int("dropped_no_match", combined.Stats.DroppedNoMatch).
		Msg("merge done")
	return formatter.Write(os.Stdout, format, combined, siriOptions(cfg))
}

func runSingle(c *cli.Context, feed string) error {
	cfg := config.Config
	format, err := formatter.ParseFormat(c.String("format"))
	if err != nil {
		return err
	}

	var env *gtfsrt.Envelope
	if file := c.String("file"); file != "" {
		env, err = newFetcher().fetch(c.Context, file)
	} else {
		client, cerr := newClient(cfg)
		if cerr != nil {
			return cerr
		}
		if feed == gtfsrt.FeedTripUpdates {
			env, err = client.FetchTripUpdates(c.Context, filterFrom(c))
		} else {
			env, err = client.FetchVehiclePositions(c.Context, filterFrom(c))
		}
	}
	if err != nil {
		return err
	}
	return formatter.Write(os.Stdout, format, formatter.FromEnvelope(env), siriOptions(cfg))
}

func runServe(c *cli.Context) error {
	cfg := config.Config
	if port := c.Int("port"); port > 0 {
		cfg.Server.Port = port
	}
	if cfg.API.APIKey == "" {
		return fmt.Errorf("no API key: set %s or api.apiKey", config.EnvAPIKey)
	}

	svc, err := atrealtime.NewService(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	go svc.Run(ctx)

	server := svc.StartServer(cfg.Server.Port)
	atrealtime.HandleGracefulShutdown(server, cancel)
	return nil
}

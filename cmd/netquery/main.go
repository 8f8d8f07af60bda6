// Command netquery queries live access equipment from the shell: resolve a
// subscriber's PPPoE session on a concentrator, or classify the alarms of
// one ONU on an OLT.
//
//	netquery -config equipment.yaml resolve bras-1 alice bob
//	netquery -config equipment.yaml diagnose olt-1 1/2/3:4
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ispmon/netquery"
	"github.com/ispmon/netquery/config"
)

func main() {
	// Local .env is optional; real deployments set the environment.
	_ = godotenv.Load()

	configPath := flag.String("config", config.PathFromEnv(), "equipment inventory file")
	debug := flag.Bool("debug", false, "enable debug logging")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall query deadline")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()

	args := flag.Args()
	if len(args) < 2 {
		usage()
	}

	inv, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("loading inventory")
	}

	target, profile, err := inv.Target(args[1])
	if err != nil {
		log.Fatal().Err(err).Msg("resolving equipment")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch args[0] {
	case "resolve":
		usernames := args[2:]
		if len(usernames) == 0 {
			usage()
		}
		resolver := netquery.NewResolver(log)
		sessions := resolver.ResolveSessions(ctx, target, usernames, profile)
		printJSON(log, sessions)
		for _, u := range usernames {
			if _, ok := sessions[u]; !ok {
				log.Info().Str("username", u).Msg("no active session found")
			}
		}
	case "diagnose":
		if len(args) != 3 {
			usage()
		}
		diagnoser := netquery.NewDiagnoser(log)
		printJSON(log, diagnoser.Diagnose(ctx, target, args[2]))
	default:
		usage()
	}
}

func printJSON(log zerolog.Logger, v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("encoding result")
	}
	fmt.Println(string(out))
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage:
  netquery [flags] resolve <equipment> <username>...
  netquery [flags] diagnose <equipment> <onu-id>
`)
	flag.PrintDefaults()
	os.Exit(2)
}

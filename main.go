package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jb-gy/f1-race-replay/pkg/detector"
	"github.com/jb-gy/f1-race-replay/pkg/helper"
	"github.com/jb-gy/f1-race-replay/pkg/model"
	"github.com/jb-gy/f1-race-replay/pkg/notification"
	"github.com/jb-gy/f1-race-replay/pkg/pubsub"
	"github.com/jb-gy/f1-race-replay/pkg/replay"
	"github.com/jb-gy/f1-race-replay/pkg/standings"
	"github.com/jb-gy/f1-race-replay/pkg/telemetry"
	"github.com/jb-gy/f1-race-replay/pkg/verify"
	"github.com/jb-gy/f1-race-replay/pkg/webserver"
)

func main() {
	var (
		year      = flag.Int("year", 0, "season year of the race to replay")
		round     = flag.Int("round", 0, "round number of the race in the season")
		file      = flag.String("file", "", "path to the exported race telemetry JSON")
		dataDir   = flag.String("data", "computed_data", "directory holding exported race telemetry")
		event     = flag.String("event", "", "event name, used to locate the telemetry file inside -data")
		cachePath = flag.String("cache", "./race-results.db", "sqlite cache for fetched race results")
		fast      = flag.Bool("fast", false, "replay frames as fast as possible instead of real time")
		serve     = flag.Bool("serve", true, "serve live standings over HTTP/websocket")
	)
	flag.Parse()

	if *year == 0 || *round == 0 {
		log.Fatal("both -year and -round are required")
	}
	path := *file
	if path == "" {
		if *event == "" {
			log.Fatal("either -file or -event must be given")
		}
		path = telemetry.FilePath(*dataDir, *event)
	}

	raceData, err := telemetry.Load(path)
	if err != nil {
		log.Fatalf("Error loading race telemetry: %s", err.Error())
	}
	outcomes := raceData.Outcomes()
	log.Printf("Loaded %d frames and %d driver outcomes from %s", len(raceData.Frames), len(outcomes), path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Stop the replay on Ctrl-C; cancellation also guarantees no
	// verification call is started for a torn-down session.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("interrupted, stopping replay")
		cancel()
	}()

	var cache *verify.Cache
	if *cachePath != "" {
		cache, err = verify.OpenCache(*cachePath)
		if err != nil {
			log.Printf("Results cache unavailable, every run will hit the API: %s", err.Error())
		} else {
			defer cache.Close()
		}
	}
	source := &verify.Source{
		Client: verify.NewClient(os.Getenv("RESULTS_API_URL")),
		Cache:  cache,
		Season: *year,
		Round:  *round,
	}

	pubsubMgr := pubsub.NewPubSub[string]()
	defer pubsubMgr.Close()

	sessionID := fmt.Sprintf("%d-%d", *year, *round)
	session := replay.NewSession(sessionID, detector.DefaultConfig(), raceData.Frames, outcomes, verify.NewReconciler(source), pubsubMgr)
	if *fast {
		session.TickInterval = 0
	}

	if *serve {
		ws := webserver.NewManager(sessionID, pubsubMgr, webserver.Meta{
			SessionID:     sessionID,
			DriverColors:  raceData.DriverColors,
			TrackStatuses: raceData.TrackStatuses,
		})
		go ws.Serve(ctx)
	}

	if err := session.Run(ctx); err != nil {
		log.Fatalf("Replay stopped: %s", err.Error())
	}

	snapshot := session.Standings()
	fmt.Printf("Race time: %s\n", helper.SecondsToClock(raceData.Frames[len(raceData.Frames)-1].T))
	fmt.Println(standings.RenderTable(snapshot, outcomes))

	discrepancies := session.Discrepancies()
	if len(discrepancies) > 0 {
		fmt.Println("Positions corrected against the official classification:")
		fmt.Println(standings.RenderDiscrepancies(discrepancies))
	}

	notifyReconciliation(ctx, sessionID, discrepancies)
}

// notifyReconciliation pushes the verification summary to Telegram when a
// bot token and chat list are configured; it is a no-op otherwise.
func notifyReconciliation(ctx context.Context, event string, discrepancies []model.Discrepancy) {
	token := os.Getenv("TELEGRAM_TOKEN")
	chats := parseChatIds(os.Getenv("TELEGRAM_CHAT_IDS"))
	if token == "" || len(chats) == 0 {
		return
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("Error creating telegram bot: %s", err.Error())
		return
	}
	notification.NewManager(ctx, bot, chats).ReconciliationComplete(event, discrepancies)
}

// parseChatIds reads a comma-separated chat ID list from the environment.
func parseChatIds(raw string) []int64 {
	var chatIds []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			log.Printf("Skipping invalid chat id %q", part)
			continue
		}
		chatIds = append(chatIds, id)
	}
	return chatIds
}

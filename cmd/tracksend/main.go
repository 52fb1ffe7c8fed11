// Command tracksend fires a single event through the configured analytics
// platforms and prints the per-platform result. Point META_TEST_EVENT_CODE at
// the Events Manager test tab to verify credentials without polluting data.
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	_ "github.com/joho/godotenv/autoload"
	jsoniter "github.com/json-iterator/go"

	"lead-tracking-service/internal/config"
	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/identity"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/platforms"
	"lead-tracking-service/internal/tracking"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type CLI struct {
	Type     string            `short:"t" help:"Event type (page_view, form_start, form_submit, lead, purchase, add_to_cart, custom or any name)" default:"custom"`
	Data     map[string]string `short:"d" help:"Event data as key=value, repeatable"`
	ClientID string            `name:"client-id" help:"Client id to send (generated when empty)"`
	Form     bool              `help:"Send as a form funnel event"`
	PageView bool              `name:"page-view" help:"Send as a page view"`
	Repeat   int               `short:"n" help:"Number of events to send as the same visitor and session" default:"1"`
	Timeout  time.Duration     `help:"Overall timeout" default:"30s"`
	Verbose  bool              `short:"v" help:"Enable debug logging"`
}

func (c *CLI) Validate() error {
	if c.Repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}
	if c.Form && c.PageView {
		return fmt.Errorf("--form and --page-view are mutually exclusive")
	}
	if c.Form && !model.EventType(c.Type).IsFormEvent() {
		return fmt.Errorf("--form requires --type form_start or form_submit")
	}
	return nil
}

func main() {
	var cli CLI
	kong.Parse(&cli,
		kong.Name("tracksend"),
		kong.Description("Send tracking events to every enabled platform."),
	)

	mode := "prod"
	if cli.Verbose {
		mode = "dev"
	}
	log, err := logger.NewLogger(mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	results, err := cli.Run(config.LoadTracking(), log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(results, "", "  ")
	fmt.Println(string(out))
	for _, r := range results {
		if len(r) == 0 || r.Succeeded() == 0 {
			os.Exit(2)
		}
	}
}

// Run dispatches Repeat events through a fresh coordinator. The events share
// one client and session id, held in memory for the life of the command.
func (c *CLI) Run(cfg *config.Config, log *logger.Logger) ([]model.Results, error) {
	client := httpclient.NewClient(httpclient.ClientConfig{
		Timeout:  cfg.TrackingHTTPTimeout,
		RetryMax: cfg.TrackingHTTPRetries,
	})
	coordinator := tracking.NewCoordinator(log, nil, platforms.FromConfig(cfg, client, nil, log)...)
	if len(coordinator.EnabledPlatforms()) == 0 {
		return nil, fmt.Errorf("no tracking platform is enabled")
	}

	ids := c.identity(cfg.SessionTTL)
	ctx, cancel := context.WithTimeout(context.Background(), c.Timeout)
	defer cancel()

	results := make([]model.Results, 0, c.Repeat)
	for i := 0; i < c.Repeat; i++ {
		results = append(results, c.dispatch(ctx, coordinator, c.event(ids)))
	}
	return results, nil
}

// identity returns a manager over an in-memory store, seeded with --client-id.
func (c *CLI) identity(sessionTTL time.Duration) *identity.Manager {
	store := identity.NewMemoryStore(sessionTTL)
	if c.ClientID != "" {
		store.Set(identity.ClientIDKey, c.ClientID, identity.Persistent)
	}
	return identity.NewManager(store)
}

func (c *CLI) dispatch(ctx context.Context, coordinator *tracking.Coordinator, event model.UnifiedEvent) model.Results {
	switch {
	case c.PageView:
		return coordinator.TrackPageView(ctx, event)
	case c.Form:
		return coordinator.TrackFormEvent(ctx, event)
	default:
		return coordinator.TrackEvent(ctx, event)
	}
}

func (c *CLI) event(ids *identity.Manager) model.UnifiedEvent {
	eventType := model.EventType(c.Type)
	if c.PageView {
		eventType = model.EventPageView
	}
	return tracking.NewEvent(eventType, parseData(c.Data), ids.GetOrCreateClientID(), ids.GetOrCreateSessionID())
}

// parseData types flag values: numbers and booleans are sent as such.
func parseData(raw map[string]string) model.EventData {
	data := make(model.EventData, len(raw))
	for k, v := range raw {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			data[k] = n
			continue
		}
		if b, err := strconv.ParseBool(v); err == nil {
			data[k] = b
			continue
		}
		data[k] = v
	}
	return data
}

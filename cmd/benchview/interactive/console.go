// Package interactive provides the interactive command-line interface
// for benchview.
package interactive

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/benchview/benchview-go/pkg/discovery"
	"github.com/benchview/benchview-go/pkg/station"
	"github.com/benchview/benchview-go/pkg/subscription"
	"github.com/benchview/benchview-go/pkg/version"
	"github.com/chzyer/readline"
)

// Deps wires the services the console operates on.
type Deps struct {
	Dashboard *station.DashboardService
	Station   *station.StationService
	Browser   discovery.Browser
	Policy    subscription.RetryPolicy
}

// Console handles interactive mode for benchview.
type Console struct {
	dash    *station.DashboardService
	station *station.StationService
	browser discovery.Browser
	policy  subscription.RetryPolicy
	rl      *readline.Instance
}

// New creates a new interactive console.
func New(deps Deps) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "benchview> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Console{
		dash:    deps.Dashboard,
		station: deps.Station,
		browser: deps.Browser,
		policy:  deps.Policy,
		rl:      rl,
	}, nil
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			// EOF or interrupt
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			c.printHelp()

		case "stations", "ls":
			c.cmdStations()

		case "watch", "w":
			c.cmdWatch(args)

		case "tests", "t":
			c.cmdTests()

		case "test":
			c.cmdTest(args)

		case "answer", "a":
			c.cmdAnswer(args)

		case "refresh":
			c.cmdRefresh(args)

		case "retry":
			c.cmdRetry(args)

		case "unsubscribe", "unwatch":
			c.cmdUnsubscribe(args)

		case "discover", "d":
			c.cmdDiscover(ctx)

		case "status":
			c.cmdStatus()

		case "quit", "exit", "q":
			fmt.Fprintln(c.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			fmt.Fprintf(c.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.rl.Stdout(), `
BenchView Commands:
  Stations:
    stations                 - List stations from the dashboard
    watch <host:port>        - Subscribe to a station's test updates
    discover                 - Find stations via mDNS

  Tests:
    tests                    - List test runs on the watched station
    test <test-id>           - Show phases, measurements and logs of a run
    answer <test-id> <plug> <text...> - Answer an operator prompt

  Streams:
    refresh [dashboard|station]     - Tear down and reopen a stream
    retry [dashboard|station]       - Retry a waiting stream now
    unsubscribe [dashboard|station] - Close a stream

  General:
    status                   - Show stream states
    help                     - Show this help
    quit                     - Exit`)
}

// cmdStations lists the dashboard's known stations.
func (c *Console) cmdStations() {
	stations := c.dash.Stations()
	if len(stations) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No stations known")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nStations (%d):\n", len(stations))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, st := range stations {
		fmt.Fprintf(c.rl.Stdout(), "  %-24s %-12s %s\n", st.Key(), st.Status, st.StationID)
		if st.Cell != "" || st.TestType != "" {
			fmt.Fprintf(c.rl.Stdout(), "  %-24s cell=%s type=%s\n", "", st.Cell, st.TestType)
		}
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdWatch subscribes to a station's test update stream.
func (c *Console) cmdWatch(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: watch <host:port>")
		return
	}

	host, port, err := parseHostPort(args[0])
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Invalid target: %v\n", err)
		return
	}

	c.station.SubscribeTo(host, port, c.policy)
	fmt.Fprintf(c.rl.Stdout(), "Watching %s:%d\n", host, port)
}

// cmdTests lists test runs on the watched station.
func (c *Console) cmdTests() {
	if _, _, ok := c.station.Target(); !ok {
		fmt.Fprintln(c.rl.Stdout(), "Not watching a station (use 'watch <host:port>')")
		return
	}

	tests := c.station.Tests()
	if len(tests) == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No test runs seen yet")
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nTest Runs (%d):\n", len(tests))
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	for _, ts := range tests {
		started := "-"
		if ts.StartTimeMillis > 0 {
			started = time.UnixMilli(ts.StartTimeMillis).Format("15:04:05")
		}
		fmt.Fprintf(c.rl.Stdout(), "  %-20s %-24s dut=%s started=%s\n",
			ts.TestID, ts.Status, ts.DUTID, started)
	}
	fmt.Fprintln(c.rl.Stdout())
}

// cmdTest shows one test run in detail.
func (c *Console) cmdTest(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: test <test-id>")
		return
	}

	ts, ok := c.station.Test(args[0])
	if !ok {
		fmt.Fprintf(c.rl.Stdout(), "Unknown test: %s\n", args[0])
		return
	}

	fmt.Fprintf(c.rl.Stdout(), "\nTest %s (%s)\n", ts.TestID, ts.Status)
	fmt.Fprintf(c.rl.Stdout(), "  DUT: %s\n", ts.DUTID)

	if len(ts.Phases) > 0 {
		fmt.Fprintln(c.rl.Stdout(), "\n  Phases:")
		for _, p := range ts.Phases {
			fmt.Fprintf(c.rl.Stdout(), "    %-28s %s\n", p.Name, p.Status)
			for _, m := range p.Measurements {
				value := m.Value
				if m.Units != "" {
					value = fmt.Sprintf("%s %s", value, m.Units)
				}
				fmt.Fprintf(c.rl.Stdout(), "      %-26s %-6s %s\n", m.Name, m.Status, value)
			}
		}
	}

	if len(ts.Attachments) > 0 {
		fmt.Fprintln(c.rl.Stdout(), "\n  Attachments:")
		for _, a := range ts.Attachments {
			fmt.Fprintf(c.rl.Stdout(), "    %s/%s (%s)\n", a.PhaseName, a.Name, a.MIMEType)
		}
	}

	if len(ts.Plugs) > 0 {
		fmt.Fprintln(c.rl.Stdout(), "\n  Active Prompts:")
		for _, p := range ts.Plugs {
			fmt.Fprintf(c.rl.Stdout(), "    %s: %s\n", p.Name, p.Prompt)
		}
	}

	if len(ts.Logs) > 0 {
		fmt.Fprintln(c.rl.Stdout(), "\n  Recent Logs:")
		logs := ts.Logs
		if len(logs) > 10 {
			logs = logs[len(logs)-10:]
		}
		for _, l := range logs {
			fmt.Fprintf(c.rl.Stdout(), "    [%s] %s: %s\n", l.Level, l.Logger, l.Message)
		}
	}

	fmt.Fprintln(c.rl.Stdout())
}

// cmdAnswer posts an operator response to a user input plug.
func (c *Console) cmdAnswer(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(c.rl.Stdout(), "Usage: answer <test-id> <plug> <text...>")
		return
	}

	response := strings.Join(args[2:], " ")
	if err := c.station.RespondPlug(args[0], args[1], map[string]string{"response": response}); err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Answer failed: %v\n", err)
		return
	}
	fmt.Fprintln(c.rl.Stdout(), "OK")
}

// cmdRefresh reopens a stream.
func (c *Console) cmdRefresh(args []string) {
	target := "station"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}

	var err error
	switch target {
	case "dashboard", "dash":
		err = c.dash.Refresh()
	case "station":
		err = c.station.Refresh()
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: refresh [dashboard|station]")
		return
	}

	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Refresh failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Refreshing %s stream\n", target)
}

// cmdRetry skips the retry delay of a waiting stream.
func (c *Console) cmdRetry(args []string) {
	target := "station"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}

	var err error
	switch target {
	case "dashboard", "dash":
		err = c.dash.RetryNow()
	case "station":
		err = c.station.RetryNow()
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: retry [dashboard|station]")
		return
	}

	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Retry failed: %v\n", err)
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Retrying %s stream\n", target)
}

// cmdUnsubscribe closes a stream.
func (c *Console) cmdUnsubscribe(args []string) {
	target := "station"
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}

	switch target {
	case "dashboard", "dash":
		c.dash.Unsubscribe()
	case "station":
		c.station.Unsubscribe()
	default:
		fmt.Fprintln(c.rl.Stdout(), "Usage: unsubscribe [dashboard|station]")
		return
	}
	fmt.Fprintf(c.rl.Stdout(), "Closed %s stream\n", target)
}

// cmdDiscover browses for stations via mDNS.
func (c *Console) cmdDiscover(ctx context.Context) {
	if c.browser == nil {
		fmt.Fprintln(c.rl.Stdout(), "mDNS browsing unavailable")
		return
	}

	fmt.Fprintln(c.rl.Stdout(), "Browsing for stations (5s)...")
	browseCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	results, err := c.browser.BrowseStations(browseCtx)
	if err != nil {
		fmt.Fprintf(c.rl.Stdout(), "Discovery error: %v\n", err)
		return
	}

	found := 0
	for entry := range results {
		found++
		fmt.Fprintf(c.rl.Stdout(), "  %-20s %s:%d", entry.StationID, entry.Host, entry.Port)
		if entry.Cell != "" {
			fmt.Fprintf(c.rl.Stdout(), " cell=%s", entry.Cell)
		}
		if entry.TestType != "" {
			fmt.Fprintf(c.rl.Stdout(), " type=%s", entry.TestType)
		}
		if entry.Firmware != "" {
			fmt.Fprintf(c.rl.Stdout(), " fw=%s", entry.Firmware)
			if !version.CompatibleWithCurrent(entry.Firmware) {
				fmt.Fprint(c.rl.Stdout(), " (incompatible)")
			}
		}
		fmt.Fprintln(c.rl.Stdout())
	}

	if found == 0 {
		fmt.Fprintln(c.rl.Stdout(), "No stations found")
	}
}

// cmdStatus shows the state of both streams.
func (c *Console) cmdStatus() {
	fmt.Fprintln(c.rl.Stdout(), "\nStream Status")
	fmt.Fprintln(c.rl.Stdout(), "-------------------------------------------")
	fmt.Fprintf(c.rl.Stdout(), "  Dashboard: %s%s\n",
		c.dash.SubscriptionState(), retrySuffix(c.dash.RetryTime()))

	if host, port, ok := c.station.Target(); ok {
		fmt.Fprintf(c.rl.Stdout(), "  Station:   %s (%s:%d)%s\n",
			c.station.SubscriptionState(), host, port, retrySuffix(c.station.RetryTime()))
	} else {
		fmt.Fprintln(c.rl.Stdout(), "  Station:   not watching")
	}
	fmt.Fprintln(c.rl.Stdout())
}

func retrySuffix(at time.Time, ok bool) string {
	if !ok {
		return ""
	}
	return fmt.Sprintf(", retry in %s", time.Until(at).Round(time.Second))
}

// parseHostPort splits "host:port" into its parts.
func parseHostPort(s string) (string, int, error) {
	idx := strings.LastIndex(s, ":")
	if idx <= 0 || idx == len(s)-1 {
		return "", 0, fmt.Errorf("expected host:port, got %q", s)
	}
	port, err := strconv.Atoi(s[idx+1:])
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in %q", s)
	}
	return s[:idx], port, nil
}

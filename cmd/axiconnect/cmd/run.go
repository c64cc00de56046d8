package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/sarchlab/axiconnect/config"
	"github.com/sarchlab/axiconnect/datarecording"
	"github.com/sarchlab/axiconnect/monitoring"
	"github.com/sarchlab/axiconnect/pipeline"
	"github.com/sarchlab/axiconnect/platform"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
	"github.com/sarchlab/axiconnect/sim/naming"
	"github.com/sarchlab/axiconnect/sim/timing"
	"github.com/sarchlab/axiconnect/tracing"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run random traffic through the interconnect.",
	Long: "`run` builds the interconnect described by the configuration, " +
		"lets every port issue read and write bursts and prints per-port " +
		"statistics.",
	RunE: runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.String("config", "", "Dotenv file with AXICONNECT_* keys")
	f.Int("ports", 0, "Number of initiator ports")
	f.Int("depth", 0, "Depth of the data buffers in beats")
	f.Int("burst-beats", 0, "Beats per burst")
	f.String("policy", "", "Arbitration policy: fixed or round-robin")
	f.String("write-mode", "", "Write lock mode: lock or outstanding")
	f.String("throughput", "", "Address register slice mode: full or reduced")
	f.Int("level-latency", 0, "Cycles between a buffer change and its report")
	f.Uint64("cycles", 0, "Maximum number of cycles to simulate")
	f.Int64("seed", 0, "Seed of the traffic models")
	f.Float64("ready-chance", 0, "Chance that a model is ready in a cycle")
	f.Bool("data-first", false, "Offer write data before the address")
	f.Int("reads", 16, "Read bursts per port")
	f.Int("writes", 16, "Write bursts per port")
	f.String("trace", "", "Record tasks into this SQLite file")
	f.Bool("log", false, "Print every task to stderr")
	f.Bool("log-events", false, "Print every engine event to stderr")
	f.Bool("monitor", false, "Start the monitoring server")
	f.Int("monitor-port", 0, "Port of the monitoring server")
	f.Bool("open-browser", false, "Open the monitoring server in a browser")
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	f := cmd.Flags()

	var paths []string
	if path, _ := f.GetString("config"); path != "" {
		paths = append(paths, path)
	}

	c, err := config.Load(paths...)
	if err != nil {
		return c, err
	}

	overrides := map[string]string{}
	for flag, key := range map[string]string{
		"ports":         "NUM_PORTS",
		"depth":         "BUFFER_DEPTH",
		"burst-beats":   "BURST_BEATS",
		"policy":        "POLICY",
		"write-mode":    "WRITE_MODE",
		"throughput":    "THROUGHPUT_MODE",
		"level-latency": "LEVEL_LATENCY",
		"cycles":        "CYCLES",
		"seed":          "SEED",
		"ready-chance":  "READY_CHANCE",
		"data-first":    "DATA_FIRST",
		"trace":         "TRACE_FILE",
		"monitor-port":  "MONITOR_PORT",
	} {
		if f.Changed(flag) {
			overrides[config.EnvPrefix+key] = f.Lookup(flag).Value.String()
		}
	}

	if err := c.Apply(overrides); err != nil {
		return c, err
	}

	return c, c.Validate()
}

func runSimulation(cmd *cobra.Command, _ []string) error {
	c, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := platform.MakeBuilder().WithConfig(c).Build("Platform")

	stats := tracing.NewStatsTracer(nil)
	tracing.CollectTrace(p.Domain, stats)

	if logTasks, _ := cmd.Flags().GetBool("log"); logTasks {
		tracing.CollectTrace(p.Domain,
			tracing.NewLogTracer(log.New(os.Stderr, "", 0), nil))
	}

	if logEvents, _ := cmd.Flags().GetBool("log-events"); logEvents {
		p.Domain.Engine().AcceptHook(
			timing.NewEventLogger(log.New(os.Stderr, "", 0)))
	}

	recorder, err := attachRecorder(p, c.TraceFile)
	if err != nil {
		return err
	}

	if err := attachMonitor(cmd, p); err != nil {
		return err
	}

	reads, _ := cmd.Flags().GetInt("reads")
	writes, _ := cmd.Flags().GetInt("writes")
	p.EnqueueTraffic(reads, writes)

	err = p.Run()
	if errors.Is(err, hardware.ErrCycleLimit) {
		fmt.Fprintf(cmd.ErrOrStderr(),
			"traffic did not complete in %d cycles\n", c.Cycles)

		err = nil
	}

	if err := finishTrace(cmd.ErrOrStderr(), recorder, err); err != nil {
		return err
	}

	printReport(cmd.OutOrStdout(), p, stats)

	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("%d protocol errors: %w", len(errs), errors.Join(errs...))
	}

	return nil
}

func attachRecorder(
	p *platform.Platform,
	path string,
) (*datarecording.SQLiteRecorder, error) {
	if path == "" {
		return nil, nil
	}

	recorder, err := datarecording.New(path)
	if err != nil {
		return nil, err
	}

	tracer, err := tracing.NewDBTracer(recorder, nil)
	if err != nil {
		return nil, err
	}

	tracing.CollectTrace(p.Domain, tracer)

	return recorder, nil
}

// finishTrace closes the recorder, if any, and returns runErr joined with
// the close error.
func finishTrace(
	out io.Writer,
	recorder *datarecording.SQLiteRecorder,
	runErr error,
) error {
	if recorder == nil {
		return runErr
	}

	if err := recorder.Close(); err != nil {
		return errors.Join(runErr, fmt.Errorf("closing trace: %w", err))
	}

	fmt.Fprintf(out, "trace written to %s\n", recorder.Path())

	return runErr
}

func attachMonitor(cmd *cobra.Command, p *platform.Platform) error {
	monitor, _ := cmd.Flags().GetBool("monitor")
	if !monitor {
		return nil
	}

	m := monitoring.NewMonitor().WithPortNumber(p.Config.MonitorPort)
	m.RegisterDomain(p.Domain)

	url, err := m.StartServer()
	if err != nil {
		return err
	}

	bar := m.CreateProgressBar("Cycles", p.Config.Cycles)
	p.Domain.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
		if ctx.Pos == hardware.HookPosCycleEnd {
			bar.SetFinished(ctx.Item.(uint64))
		}
	}))

	if open, _ := cmd.Flags().GetBool("open-browser"); open {
		if err := browser.OpenURL(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "cannot open browser: %v\n", err)
		}
	}

	return nil
}

func findStats(
	list []tracing.TaskStats,
	where, kind, what string,
) tracing.TaskStats {
	for _, s := range list {
		if s.Where == where && s.Kind == kind && s.What == what {
			return s
		}
	}

	return tracing.TaskStats{}
}

func printReport(
	out io.Writer,
	p *platform.Platform,
	stats *tracing.StatsTracer,
) {
	c := p.Config
	list := stats.Stats()

	fmt.Fprintf(out, "%d cycles, %d ports, policy %s, write mode %s, %s\n",
		p.Domain.Cycle(), c.NumPorts, c.Policy, c.WriteMode,
		throughputLabel(c.ThroughputMode))

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "port\treads\twrites\tread locks\tread lock cycles\t"+
		"write locks\twrite lock cycles\tread blocks\twrite blocks")

	for i := 0; i < c.NumPorts; i++ {
		port := naming.BuildNameWithIndex("", "Port", i)
		rl := findStats(list, p.ReadXbar.Name(), tracing.KindLock, port)
		wl := findStats(list, p.WriteXbar.Name(), tracing.KindLock, port)

		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n", i,
			len(p.ReadInitiators[i].Results()),
			len(p.WriteInitiators[i].Results()),
			rl.Count, rl.TotalCycles, wl.Count, wl.TotalCycles,
			blockCount(list, p.ReadThrottles[i].Name()),
			blockCount(list, p.WriteThrottles[i].Name()))
	}

	w.Flush()
}

func blockCount(list []tracing.TaskStats, where string) int {
	n := 0

	for _, s := range list {
		if s.Where == where && s.Kind == tracing.KindBlock {
			n += s.Count
		}
	}

	return n
}

func throughputLabel(m pipeline.ThroughputMode) string {
	return m.String() + " throughput"
}

// Package main runs the sonicloop feedback loop from the command line.
//
// It captures audio, steers the synthesis engine over OSC (and optionally
// MIDI) until interrupted, then prints a final status snapshot.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/opd-ai/sonicloop"
	"github.com/opd-ai/sonicloop/config"
	"github.com/opd-ai/sonicloop/dispatch"
	"github.com/sirupsen/logrus"
)

// CLI configuration
type CLIConfig struct {
	configPath  string
	backend     string
	device      string
	rtpListen   string
	oscHost     string
	oscPort     int
	midiPort    string
	period      time.Duration
	logLevel    string
	logFormat   string
	listDevices bool
	directive   string
	help        bool

	// set holds the flags given on the command line; only those override
	// the configuration file.
	set map[string]bool
}

// newFlagSet registers every flag against cli.
func newFlagSet(cli *CLIConfig, output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("sonicloop", flag.ContinueOnError)
	fs.SetOutput(output)

	// Capture
	fs.StringVar(&cli.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&cli.backend, "backend", string(config.BackendDevice), "Capture backend (device, rtp, simulated)")
	fs.StringVar(&cli.device, "device", "BlackHole", "Preferred capture device name (substring, case-insensitive)")
	fs.StringVar(&cli.rtpListen, "rtp-listen", "127.0.0.1:5004", "UDP address for the rtp backend")

	// Control outputs
	fs.StringVar(&cli.oscHost, "osc-host", dispatch.DefaultOSCHost, "Synthesis engine OSC host")
	fs.IntVar(&cli.oscPort, "osc-port", dispatch.DefaultOSCPort, "Synthesis engine OSC port")
	fs.StringVar(&cli.midiPort, "midi-port", "", "Mirror changes as MIDI CC to the output port matching this name")

	// Loop
	fs.DurationVar(&cli.period, "period", 2*time.Second, "Decision cycle period")
	fs.StringVar(&cli.directive, "directive", "", "Apply a directive once at startup, e.g. \"faster and brighter\"")

	// Logging configuration
	fs.StringVar(&cli.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	fs.StringVar(&cli.logFormat, "log-format", "text", "Log format (text, json)")

	fs.BoolVar(&cli.listDevices, "list-devices", false, "List capture devices and exit")
	fs.BoolVar(&cli.help, "help", false, "Show help message")
	return fs
}

// parseCLIFlags parses args and returns the configuration.
func parseCLIFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cli := &CLIConfig{set: make(map[string]bool)}
	fs := newFlagSet(cli, output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { cli.set[f.Name] = true })
	return cli, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "sonicloop: adaptive audio feedback loop")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Listens to an audio input, extracts spectral features and steers a")
	fmt.Fprintln(w, "synthesis engine over OSC until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	newFlagSet(&CLIConfig{}, w).PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  # Listen on BlackHole and drive SuperCollider on the default port\n")
	fmt.Fprintf(w, "  %s\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Run without audio hardware and mirror to a MIDI port\n")
	fmt.Fprintf(w, "  %s -backend simulated -midi-port IAC\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  # Receive RTP/Opus and log as JSON\n")
	fmt.Fprintf(w, "  %s -backend rtp -rtp-listen 0.0.0.0:5004 -log-format json\n", os.Args[0])
}

// validateCLIConfig checks flag values that the configuration layer cannot.
func validateCLIConfig(cli *CLIConfig) error {
	switch config.Backend(cli.backend) {
	case config.BackendDevice, config.BackendRTP, config.BackendSimulated:
	default:
		return fmt.Errorf("unknown backend %q: must be device, rtp or simulated", cli.backend)
	}

	if cli.oscPort <= 0 || cli.oscPort > 65535 {
		return fmt.Errorf("invalid OSC port: must be between 1 and 65535")
	}

	if cli.period <= 0 {
		return fmt.Errorf("period must be positive")
	}

	return nil
}

// buildConfig loads the configuration file, if any, and applies the flags
// that were set explicitly.
func buildConfig(cli *CLIConfig) (config.Config, error) {
	cfg := config.Default()
	if cli.configPath != "" {
		loaded, err := config.Load(cli.configPath)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if cli.set["backend"] {
		cfg.Capture.Backend = config.Backend(cli.backend)
	}
	if cli.set["device"] {
		cfg.Capture.DeviceName = cli.device
	}
	if cli.set["rtp-listen"] {
		cfg.Capture.RTPListen = cli.rtpListen
	}
	if cli.set["osc-host"] {
		cfg.Control.OSCHost = cli.oscHost
	}
	if cli.set["osc-port"] {
		cfg.Control.OSCPort = cli.oscPort
	}
	if cli.set["midi-port"] {
		cfg.Control.MIDIPort = cli.midiPort
	}
	if cli.set["period"] {
		cfg.Scheduler.Period = cli.period
		if cfg.Scheduler.BackoffPeriod < cli.period {
			cfg.Scheduler.BackoffPeriod = cli.period
		}
	}
	if cli.set["log-level"] {
		cfg.Logging.Level = cli.logLevel
	}
	if cli.set["log-format"] {
		cfg.Logging.Format = cli.logFormat
	}

	return cfg, cfg.Validate()
}

// setupSignalHandling cancels ctx on SIGINT or SIGTERM.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logrus.WithFields(logrus.Fields{
			"function": "setupSignalHandling",
			"signal":   sig.String(),
		}).Info("Shutting down")
		cancel()
	}()
}

func listDevices(cfg config.Config, w io.Writer) error {
	devices, err := sonicloop.ListDevices(cfg.Capture)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Fprintln(w, "No capture devices found.")
		return nil
	}
	for _, d := range devices {
		marker := " "
		if d.IsDefault {
			marker = "*"
		}
		fmt.Fprintf(w, "%s %2d  %-40s  %d in\n", marker, d.Index, d.Name, d.MaxInputChannels)
	}
	return nil
}

func run(ctx context.Context, cfg config.Config, directive string) error {
	opts := &sonicloop.Options{}
	if cfg.Control.MIDIPort != "" {
		out, err := openMIDIOut(cfg.Control.MIDIPort)
		if err != nil {
			return err
		}
		defer out.Close()
		opts.Sinks = append(opts.Sinks, out.sink(uint8(cfg.Control.MIDIChannel)))
	}

	loop, err := sonicloop.New(cfg, opts)
	if err != nil {
		return err
	}
	if err := loop.Start(ctx); err != nil {
		return err
	}

	if directive != "" {
		if _, err := loop.ApplyDirective(ctx, directive); err != nil {
			logrus.WithFields(logrus.Fields{
				"function":  "run",
				"directive": directive,
				"error":     err.Error(),
			}).Warn("Startup directive failed")
		}
	}

	<-ctx.Done()
	stopErr := loop.Stop()

	snap, err := json.MarshalIndent(loop.Snapshot(), "", "  ")
	if err == nil {
		fmt.Println(string(snap))
	}
	return stopErr
}

func main() {
	cli, err := parseCLIFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			printUsage(os.Stdout)
			os.Exit(0)
		}
		os.Exit(2)
	}

	if cli.help {
		printUsage(os.Stdout)
		os.Exit(0)
	}

	if err := validateCLIConfig(cli); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Use -help for usage information.\n")
		os.Exit(1)
	}

	cfg, err := buildConfig(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Logging.Apply(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if cli.listDevices {
		if err := listDevices(cfg, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to list devices: %v\n", err)
			os.Exit(1)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	if err := run(ctx, cfg, cli.directive); err != nil {
		fmt.Fprintf(os.Stderr, "sonicloop: %v\n", err)
		os.Exit(1)
	}
}

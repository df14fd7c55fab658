// Command scopecap captures a stopped-trigger acquisition from a Rigol
// DS4000-series oscilloscope and writes it to a versioned JSON document.
// Optional extras: per-channel NumPy export for notebooks, a ZeroMQ summary
// broadcast for live monitors, and a ClickHouse metadata row for the lab's
// capture index.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kestrel-lab/scopecap"
	"github.com/kestrel-lab/scopecap/internal/capturedb"
)

var githash = "githash not computed"
var buildDate = "build date not computed"

// makeFileExist checks that dir/filename exists, and creates the directory
// and file if it doesn't.
func makeFileExist(dir, filename string) (string, error) {
	if strings.Contains(dir, "$HOME") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = strings.Replace(dir, "$HOME", home, 1)
	}
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return "", err
		}
		if err2 := os.MkdirAll(dir, 0775); err2 != nil {
			return "", err2
		}
	}
	fullname := path.Join(dir, filename)
	_, err := os.Stat(fullname)
	if os.IsNotExist(err) {
		f, err2 := os.OpenFile(fullname, os.O_WRONLY|os.O_CREATE, 0664)
		if err2 != nil {
			return "", err2
		}
		f.Close()
	}
	return fullname, nil
}

// setupViper sets up the viper configuration manager: says where to find
// config files and the filename and suffix. Sets some defaults.
func setupViper() error {
	viper.SetDefault("addr", "scope:5555")
	viper.SetDefault("channels", "1,2,3,4")
	viper.SetDefault("timeout", "5s")
	viper.SetDefault("publishport", 0)
	viper.SetDefault("usedb", false)

	HOME, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("Error finding User Home Dir: %s\n", err)
	}
	dotScopecap := filepath.Join(HOME, ".scopecap")
	const filename string = "config"
	const suffix string = ".yaml"
	if _, err := makeFileExist(dotScopecap, filename+suffix); err != nil {
		return err
	}

	viper.SetConfigName(filename)
	viper.AddConfigPath(filepath.FromSlash("/etc/scopecap"))
	viper.AddConfigPath(dotScopecap)
	viper.AddConfigPath(".")
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading config file: %s", err)
	}
	return nil
}

func startLogger(pfname string) *log.Logger {
	probFile, err := os.OpenFile(pfname, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		panic(fmt.Sprintf("Could not open log file '%s'", pfname))
	}
	probLogger := log.New(probFile, "", log.LstdFlags)
	probLogger.SetOutput(&lumberjack.Logger{
		Filename:   pfname,
		MaxSize:    10,  // megabytes after which new file is created
		MaxBackups: 4,   // number of backups
		MaxAge:     180, // days
		Compress:   true,
	})
	return probLogger
}

func parseChannels(arg string) ([]scopecap.Channel, error) {
	var channels []scopecap.Channel
	for _, part := range strings.Split(arg, ",") {
		ch, err := scopecap.ParseChannel(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		channels = append(channels, ch)
	}
	return channels, nil
}

func main() {
	scopecap.Build.Githash = githash
	scopecap.Build.Date = buildDate

	if err := setupViper(); err != nil {
		panic(err)
	}

	printVersion := flag.Bool("version", false, "print version and quit")
	addr := flag.String("addr", viper.GetString("addr"), "scope raw-socket address (host:port)")
	chanArg := flag.String("channels", viper.GetString("channels"), "comma-separated channels to capture (1-4, MATH)")
	outName := flag.String("out", "", "output document path (default capture-<ulid>.json)")
	npyDir := flag.String("npy", "", "also write one <channel>.npy per channel into this directory")
	publishPort := flag.Int("publishport", viper.GetInt("publishport"), "broadcast capture summaries on this ZMQ PUB port (0 = off)")
	useDB := flag.Bool("db", viper.GetBool("usedb"), "record capture metadata in ClickHouse")
	pingDB := flag.Bool("pingdb", false, "check the ClickHouse server and quit")
	timeout := flag.Duration("timeout", viper.GetDuration("timeout"), "per-query reply timeout")
	useSim := flag.Bool("sim", false, "capture from the built-in simulated scope instead of hardware")
	verbose := flag.Bool("verbose", false, "dump capture summaries to stdout")
	flag.Parse()

	if *printVersion {
		fmt.Printf("This is scopecap version %s\n", scopecap.Build.Version)
		fmt.Printf("Git commit hash: %s\n", githash)
		fmt.Printf("Build time: %s\n", buildDate)
		fmt.Printf("Built on go version %s\n", runtime.Version())
		os.Exit(0)
	}
	if *pingDB {
		if err := capturedb.PingServer(); err != nil {
			log.Fatal(err)
		}
		os.Exit(0)
	}

	HOME, err := os.UserHomeDir()
	if err != nil {
		panic(err)
	}
	logdir := filepath.Join(HOME, ".scopecap", "logs")
	problemname, err := makeFileExist(logdir, "problems.log")
	if err != nil {
		panic(err)
	}
	problemLogger := startLogger(problemname)
	fmt.Printf("This is scopecap version %s (git commit %s)\n", scopecap.Build.Version, githash)
	fmt.Printf("Logging problems to %s\n", problemname)

	channels, err := parseChannels(*chanArg)
	if err != nil {
		log.Fatal(err)
	}

	var link scopecap.Link
	if *useSim {
		link = scopecap.NewSimDS4000()
		fmt.Println("Capturing from the simulated scope")
	} else {
		tcp, err := scopecap.DialTCP(*addr)
		if err != nil {
			log.Fatal(err)
		}
		defer tcp.Close()
		link = tcp
	}

	session := scopecap.NewSession(link, scopecap.DS4000{})
	session.SetQueryTimeout(*timeout)
	session.SetLogger(problemLogger)

	// SIGINT cancels between queries, leaving the scope's link usable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	capture, err := session.Capture(ctx, channels)
	if err != nil {
		problemLogger.Printf("capture failed: %v", err)
		log.Fatal(err)
	}
	for i := range capture.Failures {
		fmt.Printf("channel failed: %s\n", capture.Failures[i].Error())
	}
	fmt.Printf("Captured %d of %d requested channels from %q\n",
		len(capture.Channels), len(channels), capture.Instrument)

	name := *outName
	if name == "" {
		name = fmt.Sprintf("capture-%s.json", strings.ToLower(capture.ID))
	}
	f, err := os.Create(name)
	if err != nil {
		log.Fatal(err)
	}
	if err := capture.WriteJSON(f); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %s\n", name)

	if *npyDir != "" {
		if err := writeNPYFiles(*npyDir, capture); err != nil {
			log.Fatal(err)
		}
	}

	if *publishPort > 0 {
		pub, err := scopecap.NewPublisher(*publishPort)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		// Give subscribers a moment: PUB drops frames sent before they join.
		time.Sleep(200 * time.Millisecond)
		if err := pub.PublishCapture(capture); err != nil {
			problemLogger.Printf("publish: %v", err)
		}
	}

	if *useDB {
		recordCapture(capture, *addr, name)
	}

	if *verbose {
		for i := range capture.Channels {
			spew.Dump(capture.Channels[i].Summarize())
		}
	}
}

// writeNPYFiles writes one (n, 2) time/volts array per captured channel.
func writeNPYFiles(dir string, capture *scopecap.Capture) error {
	if err := os.MkdirAll(dir, 0775); err != nil {
		return err
	}
	for i := range capture.Channels {
		cc := &capture.Channels[i]
		name := filepath.Join(dir, strings.ToLower(cc.Channel.String())+".npy")
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := cc.Waveform.WriteNPY(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", name)
	}
	return nil
}

// recordCapture inserts one metadata row, waiting briefly for the async
// recorder to drain before the process exits.
func recordCapture(capture *scopecap.Capture, addr, filename string) {
	abort := make(chan struct{})
	db := capturedb.Start(scopecap.Build.Version, abort)
	npoints := 0
	for i := range capture.Channels {
		if p := capture.Channels[i].Preamble.Points; p > npoints {
			npoints = p
		}
	}
	var size int64
	if fi, err := os.Stat(filename); err == nil {
		size = fi.Size()
	}
	db.RecordCapture(&capturedb.CaptureMessage{
		ID:         capture.ID,
		Time:       capture.Time,
		Instrument: capture.Instrument,
		SourceAddr: addr,
		Nchannels:  len(capture.Channels),
		Npoints:    npoints,
		Filename:   filename,
		FileSize:   size,
	})
	time.Sleep(100 * time.Millisecond)
	close(abort)
	db.Wait()
}

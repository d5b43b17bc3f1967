package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"voxpense/audio"
	"voxpense/bus"
	"voxpense/config"
	"voxpense/expense"
	"voxpense/extract"
	"voxpense/feature"
	"voxpense/log"
	"voxpense/recorder"
)

var version = "dev"

func main() {
	configFlag := flag.String("config", "", "Config file path")
	setupFlag := flag.Bool("setup", false, "Select microphone device and save it to the config")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	langFlag := flag.String("lang", "", "Spoken language override (az, en, ru, tr)")
	logPathFlag := flag.String("logpath", "", "Log directory path (default: OS-specific location)")
	fakeFlag := flag.Bool("fake", false, "Offline demo: fake microphone and collaborators")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("voxpense %s\n", version)
		os.Exit(0)
	}

	if logDir, err := log.ResolveDir(*logPathFlag); err == nil {
		log.SetDir(logDir)
		if err := log.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
		}
	}
	defer log.Close()

	cfgPath, err := config.ResolvePath(*configFlag)
	if err != nil {
		fatal("resolving config path: %v", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal("%v", err)
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *deviceFlag != "" {
		cfg.Device = *deviceFlag
	}
	if err := cfg.Validate(); err != nil {
		fatal("%v", err)
	}

	var actx audio.Context
	if *fakeFlag {
		fake := audio.NewFakeContext()
		fake.AutoFeed = true
		actx = fake
	} else {
		actx, err = audio.NewContext()
		if err != nil {
			fatal("initializing audio: %v", err)
		}
	}
	defer actx.Close()

	if *setupFlag {
		dev, err := audio.SelectDevice(actx)
		if err != nil {
			fatal("device selection: %v", err)
		}
		cfg.Device = dev.Name
		if err := cfg.Save(cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not save config: %v\n", err)
		}
	}

	var selected *audio.DeviceInfo
	if cfg.Device != "" {
		if devices, err := actx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == cfg.Device {
					selected = &devices[i]
					break
				}
			}
		}
	}

	var extractor extract.Extractor
	var store expense.Store
	if *fakeFlag {
		extractor = &extract.Fake{Result: &extract.Result{
			Amount:          10,
			Merchant:        "Taxi",
			Category:        "Nəqliyyat",
			TranscribedText: "10 manat taksi",
		}}
		store = &expense.FakeStore{}
	} else {
		if cfg.APIKey == "" {
			fatal("api_key missing in %s (or run with -fake)", cfgPath)
		}
		extractor = extract.NewClient(cfg.APIBase, cfg.APIKey)
		store = expense.NewClient(cfg.APIBase, cfg.APIKey)
	}

	b := bus.New()
	refresh := b.Subscribe()
	go func() {
		// stand-in for the dashboards that listen for the broadcast
		for ev := range refresh {
			log.Infof("refresh broadcast: expense %s (%s %.2f)", ev.ID, ev.Merchant, ev.Amount)
		}
	}()

	sink := &teaSink{}
	ctrl := recorder.New(recorder.Config{
		Audio:     actx,
		Device:    selected,
		Extractor: extractor,
		Gate:      feature.Static{F: feature.Flags{Premium: cfg.Premium, VoiceEnabled: cfg.VoiceEnabled}},
		Sink:      sink,
		Language:  cfg.Language,
		Accepted:  cfg.Formats,
	})
	defer ctrl.Close()

	p := tea.NewProgram(newModel(ctrl, store, b), tea.WithAltScreen())
	sink.attach(p)
	if _, err := p.Run(); err != nil {
		fatal("TUI error: %v", err)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

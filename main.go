package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"quaddeck/catalog"
	"quaddeck/config"
	"quaddeck/debug"
	"quaddeck/deck"
	"quaddeck/midi"
	"quaddeck/router"
	"quaddeck/surface"
	"quaddeck/theme"
	"quaddeck/tui"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("config: %v\n", err)
		os.Exit(1)
	}

	if cfg.UI.Debug {
		debug.Enable()
		defer debug.Disable()
	}

	cat, err := catalog.LoadFile(cfg.Audio.TrackList)
	if err != nil {
		fmt.Printf("catalog: %v\n", err)
		os.Exit(1)
	}

	engine, err := deck.NewEngine(cfg.Audio.AssetDir)
	if err != nil {
		fmt.Printf("audio: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()
	engine.SetMasterVolume(cfg.Audio.MasterVolume)

	res := surface.NewResolver(surface.DefaultLayout())
	res.SetTempo(cfg.UI.StartTempo)

	r := router.New(res, engine, cat)

	// The control surface is the whole point; nothing downstream is
	// meaningful without it.
	deviceMgr := midi.NewDeviceManager(cfg.Surface.PortName)
	if deviceMgr.ScanOnce() == nil {
		fmt.Println("no control surface found - connect the controller and retry")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go deviceMgr.Run(ctx)

	th := theme.New(theme.DefaultPalette())
	m := tui.NewModel(r, engine, cat, deviceMgr, th, res.Tempo())
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

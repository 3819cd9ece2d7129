package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "monitor":
		monitor()
	case "sweep":
		indicatorSweep()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("quaddeck surface test")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list     - List all MIDI ports")
	fmt.Println("  monitor  - Print raw messages from the surface")
	fmt.Println("  sweep    - Sweep indicator intensities across deck channels")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! MIDI subsystem is hung.")
	}
}

func findSurface() drivers.In {
	for _, p := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), "ddj") {
			return p
		}
	}
	return nil
}

func monitor() {
	inPort := findSurface()
	if inPort == nil {
		fmt.Println("No DDJ surface found")
		return
	}
	fmt.Printf("Monitoring %s (Ctrl+C to exit)\n", inPort.String())

	stop, err := midi.ListenTo(inPort, func(msg midi.Message, timestampms int32) {
		var channel, note, velocity uint8
		var cc, value uint8
		switch {
		case msg.GetNoteOn(&channel, &note, &velocity):
			fmt.Printf("  button ch=%-2d note=0x%02X vel=%d\n", channel, note, velocity)
		case msg.GetNoteOff(&channel, &note, &velocity):
			fmt.Printf("  button ch=%-2d note=0x%02X release\n", channel, note)
		case msg.GetControlChange(&channel, &cc, &value):
			fmt.Printf("  knob   ch=%-2d cc=0x%02X val=%d\n", channel, cc, value)
		}
	})
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	defer stop()

	select {}
}

func indicatorSweep() {
	var outPort drivers.Out
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), "ddj") {
			outPort = p
			break
		}
	}
	if outPort == nil {
		fmt.Println("No DDJ surface found")
		return
	}

	send, err := midi.SendTo(outPort)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println("Sweeping indicators on deck channels 0 and 1...")
	for _, ch := range []uint8{0, 1} {
		for note := uint8(0); note < 0x60; note++ {
			send(midi.NoteOn(ch, note, 127))
			time.Sleep(20 * time.Millisecond)
			send(midi.NoteOn(ch, note, 0))
		}
	}
	fmt.Println("Done!")
}

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli"
	"github.com/valerio/go-chippy/chippy"
	"github.com/valerio/go-chippy/chippy/audio"
	"github.com/valerio/go-chippy/chippy/backend"
	"github.com/valerio/go-chippy/chippy/backend/sdl2"
	"github.com/valerio/go-chippy/chippy/backend/terminal"
	"github.com/valerio/go-chippy/chippy/timing"
	"github.com/valerio/go-chippy/chippy/video"
)

func main() {
	app := cli.NewApp()
	app.Name = "Chippy"
	app.Description = "A simple CHIP-8 emulator"
	app.Usage = "chippy [options] <ROM file>"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM file",
		},
		cli.StringFlag{
			Name:  "backend",
			Usage: "Display backend to use (terminal, sdl2)",
			Value: "terminal",
		},
		cli.IntFlag{
			Name:  "clock",
			Usage: "CPU clock rate in Hz",
			Value: timing.DefaultClockHz,
		},
		cli.IntFlag{
			Name:  "scale",
			Usage: "Pixel scale factor for windowed backends",
			Value: 12,
		},
		cli.BoolFlag{
			Name:  "no-audio",
			Usage: "Disable the sound timer beeper",
		},
		cli.Uint64Flag{
			Name:  "seed",
			Usage: "Seed for the random instruction (0 = random seed)",
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Log every executed instruction (very verbose)",
		},
		cli.BoolFlag{
			Name:  "headless",
			Usage: "Run the emulator without a graphical interface",
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run in headless mode (required for headless)",
			Value: 0,
		},
		cli.IntFlag{
			Name:  "snapshot-interval",
			Usage: "Save frame snapshots every N frames in headless mode (0 = disabled)",
			Value: 0,
		},
		cli.StringFlag{
			Name:  "snapshot-dir",
			Usage: "Directory to save frame snapshots (default: temp directory)",
		},
	}
	app.Action = runEmulator

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running emulator", "error", err)
		os.Exit(1)
	}
}

func runEmulator(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	beeper := buildBeeper(c.Bool("no-audio") || c.Bool("headless"))
	defer beeper.Close()

	machine, err := chippy.NewWithFile(romPath, beeper)
	if err != nil {
		return err
	}

	if c.IsSet("seed") {
		machine.SetSeed(c.Uint64("seed"))
	}
	if c.Bool("trace") {
		machine.SetTrace(true)
	}

	if c.Bool("headless") {
		return runHeadless(c, machine, romPath)
	}

	var b backend.Backend
	switch name := c.String("backend"); name {
	case "terminal":
		b = terminal.New()
	case "sdl2":
		b = sdl2.New()
	default:
		return fmt.Errorf("unknown backend %q", name)
	}

	emu := chippy.NewEmulator(machine, b, chippy.Options{
		ClockHz: c.Int("clock"),
		Scale:   c.Int("scale"),
		Title:   "chippy - " + filepath.Base(romPath),
	})
	return emu.Run()
}

func buildBeeper(disabled bool) audio.Beeper {
	if disabled {
		return audio.Null{}
	}
	beeper, err := audio.NewOtoBeeper()
	if err != nil {
		slog.Warn("audio unavailable, sound disabled", "error", err)
		return audio.Null{}
	}
	return beeper
}

func runHeadless(c *cli.Context, machine *chippy.Machine, romPath string) error {
	frames := c.Int("frames")
	if frames <= 0 {
		return errors.New("headless mode requires --frames option with a positive value")
	}

	snapshotInterval := c.Int("snapshot-interval")
	snapshotDir := c.String("snapshot-dir")

	if snapshotInterval > 0 {
		if snapshotDir == "" {
			tempDir, err := os.MkdirTemp("", "chippy-snapshots-*")
			if err != nil {
				return fmt.Errorf("failed to create snapshot directory: %v", err)
			}
			snapshotDir = tempDir
		} else {
			if err := os.MkdirAll(snapshotDir, 0755); err != nil {
				return fmt.Errorf("failed to create snapshot directory: %v", err)
			}
		}
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	slog.SetDefault(slog.New(handler))

	romName := filepath.Base(romPath)
	romName = strings.TrimSuffix(romName, filepath.Ext(romName))

	clockHz := c.Int("clock")
	if clockHz <= 0 {
		clockHz = timing.DefaultClockHz
	}
	cyclesPerFrame := clockHz / timing.FrameHz

	slog.Info("Running headless mode", "frames", frames, "cycles_per_frame", cyclesPerFrame, "snapshot_interval", snapshotInterval, "snapshot_dir", snapshotDir)

	for i := 0; i < frames; i++ {
		if err := machine.RunFrame(cyclesPerFrame); err != nil {
			return fmt.Errorf("frame %d: %w", i+1, err)
		}

		if snapshotInterval > 0 && (i+1)%snapshotInterval == 0 {
			snapshotPath := filepath.Join(snapshotDir, fmt.Sprintf("%s_frame_%d.txt", romName, i+1))
			if err := saveFrameSnapshot(machine, i+1, snapshotPath); err != nil {
				slog.Error("Failed to save snapshot", "frame", i+1, "path", snapshotPath, "error", err)
			} else {
				slog.Info("Saved frame snapshot", "frame", i+1, "path", snapshotPath)
			}
		}
	}

	if snapshotInterval > 0 {
		slog.Info("Headless execution completed", "frames", frames, "snapshots_saved_to", snapshotDir)
	} else {
		slog.Info("Headless execution completed", "frames", frames)
	}
	return nil
}

// saveFrameSnapshot saves the current frame as a text representation
func saveFrameSnapshot(machine *chippy.Machine, frameNum int, filename string) error {
	frame := machine.Frame()

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "# CHIP-8 Frame Snapshot\n")
	fmt.Fprintf(file, "# Frame: %d, Instructions: %d\n", frameNum, machine.CPU().Cycles())
	fmt.Fprintf(file, "# Resolution: %dx%d pixels\n", video.Width, video.Height)
	fmt.Fprintf(file, "# Legend: #=on .=off\n")
	fmt.Fprintf(file, "#\n")

	for y := 0; y < frame.Height(); y++ {
		for x := 0; x < frame.Width(); x++ {
			if frame.At(x, y) {
				fmt.Fprint(file, "#")
			} else {
				fmt.Fprint(file, ".")
			}
		}
		fmt.Fprintln(file)
	}

	return nil
}

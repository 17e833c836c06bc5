package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/signal"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/nvlled/photocage/lib"
	"github.com/nvlled/photocage/lib/camera"
	"github.com/nvlled/photocage/lib/delay"
	"github.com/nvlled/photocage/lib/filter"
	"github.com/nvlled/photocage/lib/headless"
	"github.com/nvlled/photocage/lib/logger"
	"github.com/nvlled/photocage/lib/sequencer"
	"github.com/nvlled/photocage/lib/strip"
	"github.com/urfave/cli"
)

var app = cli.NewApp()
var log = logger.Log

var (
	layoutFlag = cli.StringFlag{
		Name:  "layout, l",
		Value: sequencer.DefaultLayout.Name,
		Usage: "photo layout: 4 Pose, 3 Pose or 2 Pose",
	}
	filterFlag = cli.StringFlag{
		Name:  "filter, f",
		Value: filter.Normal.Name,
		Usage: "filter preset: Normal, B&W, Vintage, Blur, Polaroid, Warm",
	}
	backgroundFlag = cli.StringFlag{
		Name:  "background, b",
		Value: strip.DefaultBackground.Name,
		Usage: "strip background color",
	}
	cameraDirFlag = cli.StringFlag{
		Name:  "camera-dir",
		Usage: "use the images of a directory as the camera",
	}
)

func init() {
	app.Name = "photocage"
	app.Usage = "A photobooth: countdown, filtered shots, one photo strip"
	app.UsageText = "photocage [command] [options]"
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "config", Usage: "settings file"},
		cli.StringFlag{Name: "window-title", Usage: "window title"},
		cameraDirFlag,
		layoutFlag,
		filterFlag,
		backgroundFlag,
	}
	app.Action = runBooth
	app.Commands = []cli.Command{
		{
			Name:      "capture",
			Aliases:   []string{"c"},
			Usage:     "Run one capture session and save the photos",
			ArgsUsage: "photos.json",
			Flags: []cli.Flag{
				cameraDirFlag,
				layoutFlag,
				filterFlag,
				cli.IntFlag{Name: "delay, d", Value: int(delay.Default), Usage: "seconds between shots: 3, 5 or 10"},
				cli.DurationFlag{Name: "interval", Value: time.Second, Usage: "length of one countdown tick"},
			},
			Action: runCapture,
		},
		{
			Name:      "strip",
			Aliases:   []string{"s"},
			Usage:     "Compose a photo strip (.png) or flipbook (.gif) from photos",
			ArgsUsage: "photos.json | image...",
			Flags: []cli.Flag{
				backgroundFlag,
				cli.StringFlag{Name: "out, o", Value: strip.DefaultFilename, Usage: "output file"},
				cli.BoolFlag{Name: "new-file", Usage: "never overwrite, number the output instead"},
			},
			Action: runStrip,
		},
		{
			Name:      "filter",
			Usage:     "Apply a filter preset to an image",
			ArgsUsage: "input output.jpg",
			Flags:     []cli.Flag{filterFlag},
			Action:    runFilter,
		},
	}
}

func parseSelection(c *cli.Context) (sequencer.Layout, filter.Option, error) {
	layout, ok := sequencer.LookupLayout(c.String("layout"))
	if !ok {
		return layout, filter.Option{}, fmt.Errorf("%w: %v", sequencer.ErrInvalidLayout, c.String("layout"))
	}
	opt, ok := filter.Lookup(c.String("filter"))
	if !ok {
		return layout, opt, fmt.Errorf("unknown filter %v", c.String("filter"))
	}
	return layout, opt, nil
}

func parseBackground(c *cli.Context) (strip.Background, error) {
	bg, ok := strip.LookupBackground(c.String("background"))
	if !ok {
		return bg, fmt.Errorf("unknown background %v", c.String("background"))
	}
	return bg, nil
}

func runBooth(c *cli.Context) error {
	layout, opt, err := parseSelection(c)
	if err != nil {
		return err
	}
	bg, err := parseBackground(c)
	if err != nil {
		return err
	}

	booth, err := lib.NewApp(lib.Options{
		SettingsFile: c.String("config"),
		WindowTitle:  c.String("window-title"),
		CameraDir:    c.String("camera-dir"),
		Layout:       layout,
		Filter:       opt,
		Background:   bg,
	})
	if err != nil {
		return err
	}
	defer booth.Close()

	ebiten.SetFPSMode(ebiten.FPSModeVsyncOn)
	ebiten.SetScreenTransparent(true)
	if err := booth.Init(); err != nil {
		return err
	}
	if err := ebiten.RunGame(booth); err != nil && !errors.Is(err, lib.ErrQuit) {
		return err
	}
	return nil
}

func runCapture(c *cli.Context) error {
	out := c.Args().Get(0)
	if out == "" {
		return fmt.Errorf("output filename is required")
	}
	layout, opt, err := parseSelection(c)
	if err != nil {
		return err
	}
	d, err := delay.Parse(c.Int("delay"))
	if err != nil {
		return err
	}

	var source camera.Source = camera.NewScreenSource(image.Rectangle{})
	if dir := c.String("camera-dir"); dir != "" {
		if source, err = camera.NewDirSource(dir); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frames, err := headless.Capture(ctx, headless.CaptureOptions{
		Source:   source,
		Layout:   layout,
		Filter:   opt,
		Delay:    d,
		Interval: c.Duration("interval"),
		Progress: os.Stderr,
	})
	if err != nil {
		return err
	}
	if err := headless.SaveFrames(out, frames); err != nil {
		return err
	}
	log.WithField("file", out).Infof("%v photos saved", len(frames))
	return nil
}

func runStrip(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("photos are required")
	}
	bg, err := parseBackground(c)
	if err != nil {
		return err
	}
	frames, err := headless.LoadFrames(c.Args())
	if err != nil {
		return err
	}

	out := c.String("out")
	if c.Bool("new-file") {
		if out, err = lib.NextFreeFilename(out); err != nil {
			return err
		}
	}
	return headless.WriteStripFile(context.Background(), out, frames, bg.Color)
}

func runFilter(c *cli.Context) error {
	src, dst := c.Args().Get(0), c.Args().Get(1)
	if src == "" || dst == "" {
		return fmt.Errorf("input and output filenames are required")
	}
	opt, ok := filter.Lookup(c.String("filter"))
	if !ok {
		return fmt.Errorf("unknown filter %v", c.String("filter"))
	}
	return headless.FilterFile(src, dst, opt)
}

func main() {
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

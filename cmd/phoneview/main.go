// Package main is the phone model viewer.
//
// Controls:
//
//	Left drag       - Orbit the camera
//	Right drag      - Pan
//	Scroll / pinch  - Zoom
//	Click           - Select a part and show its info card
//	E               - Explode / implode
//	TAB             - Highlight the next part
//	A               - Toggle auto-rotate
//	R               - Reset view
//	1-9 / N         - Switch model
//	Esc             - Clear selection, then quit
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Faultbox/phoneview/internal/app"
	"github.com/Faultbox/phoneview/internal/config"
	"github.com/Faultbox/phoneview/internal/logger"
	"github.com/Faultbox/phoneview/internal/phone"
	"github.com/Faultbox/phoneview/internal/prefs"
	"github.com/Faultbox/phoneview/internal/scene"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	var ov config.Overrides

	cmd := &cobra.Command{
		Use:   "phoneview [model-id|model.glb]",
		Short: "Interactive 3D phone model viewer",
		Long: `phoneview - Interactive 3D phone model viewer

Orbit, zoom and explode phone models loaded from glTF files.

Controls:
  Left drag      - Orbit
  Right drag     - Pan
  Scroll         - Zoom
  Click          - Select part
  E              - Explode / implode
  TAB            - Next part
  A              - Auto-rotate
  R              - Reset view
  1-9, N         - Switch model
  Esc            - Clear selection / quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				ov.Model = args[0]
			}
			return run(cmd.Context(), ov)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&ov.ConfigPath, "config", "", "Path to config file")
	flags.BoolVar(&ov.Debug, "debug", false, "Enable debug logging")
	flags.StringVar(&ov.LogFile, "log-file", "", "Write logs to this file")
	cmd.Flags().IntVar(&ov.Width, "width", 0, "Window width")
	cmd.Flags().IntVar(&ov.Height, "height", 0, "Window height")
	cmd.Flags().BoolVar(&ov.Fullscreen, "fullscreen", false, "Start fullscreen")
	cmd.Flags().StringVar(&ov.Remote, "remote", "", "Serve the remote control websocket on this address")
	cmd.Flags().StringVar(&ov.IMUPort, "imu-port", "", "Serial port of an orientation sensor")

	infoCmd := &cobra.Command{
		Use:   "info <model.glb>",
		Short: "Display model information",
		Long:  "Display the node tree, selectable parts, animation clips and bounds of a glTF model.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), args[0])
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List catalog models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(ov)
		},
	}

	var write, force bool
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long:  "Print the configuration after defaults, the config file and flags are merged. With --write it is saved as the per-user config file.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(ov, write, force)
		},
	}
	configCmd.Flags().BoolVar(&write, "write", false, "Write to the per-user config file instead of stdout")
	configCmd.Flags().BoolVar(&force, "force", false, "Replace an existing config file")

	cmd.AddCommand(infoCmd, modelsCmd, configCmd)

	if err := fang.Execute(context.Background(), cmd); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, ov config.Overrides) error {
	cfg, err := config.Load(ov)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("=== Phone Viewer ===")

	catalog, err := phone.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}

	var store *prefs.Store
	if cfg.Storage.Disabled {
		store = prefs.New(nil, logger.Named("prefs"))
	} else {
		store = prefs.Open(cfg.Storage.AppName, logger.Named("prefs"))
	}

	a, err := app.New(cfg, catalog, store)
	if err != nil {
		logger.Error("failed to initialize viewer", zap.Error(err))
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Run(ctx, cfg.Viewer.InitialModel); err != nil {
		logger.Error("viewer error", zap.Error(err))
		return err
	}

	logger.Info("viewer closed")
	return nil
}

func runInfo(ctx context.Context, path string) error {
	logger.InitNop()

	m, err := scene.NewLoader(nil).Load(ctx, path)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	fmt.Printf("File:       %s\n", path)
	fmt.Printf("Name:       %s\n", m.Name)
	fmt.Println()

	fmt.Println("Nodes:")
	printNode(m.Root, 1)
	fmt.Println()

	parts := m.MeshNames()
	fmt.Printf("Parts:      %d\n", len(parts))
	for _, p := range parts {
		fmt.Printf("  %s\n", p)
	}

	if len(m.Clips) > 0 {
		fmt.Println()
		fmt.Printf("Clips:      %d\n", len(m.Clips))
		for _, c := range m.Clips {
			fmt.Printf("  %-20s %.2fs, %d tracks\n", c.Name, c.Duration, len(c.Tracks))
		}
	}

	b := m.Bounds()
	if !b.IsEmpty() {
		size := b.Size()
		center := b.Center()
		fmt.Println()
		fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", b.Min.X, b.Min.Y, b.Min.Z)
		fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", b.Max.X, b.Max.Y, b.Max.Z)
		fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X, size.Y, size.Z)
		fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X, center.Y, center.Z)
	}
	return nil
}

func printNode(n *scene.Node, depth int) {
	kind := ""
	if n.IsMesh() {
		kind = " [mesh]"
	}
	fmt.Printf("%*s%s%s\n", depth*2, "", n.Name, kind)
	for _, c := range n.Children {
		printNode(c, depth+1)
	}
}

func runModels(ov config.Overrides) error {
	cfg, err := config.Load(ov)
	if err != nil {
		return err
	}
	catalog, err := phone.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return err
	}
	for i, e := range catalog.Models {
		key := " "
		if i < 9 {
			key = fmt.Sprint(i + 1)
		}
		fmt.Printf("%s  %-10s %-24s %s\n", key, e.ID, e.Name, e.Path)
	}
	return nil
}

func runConfig(ov config.Overrides, write, force bool) error {
	cfg, err := config.Load(ov)
	if err != nil {
		return err
	}
	if write {
		path := config.DefaultPath()
		if err := cfg.WriteFile(path, force); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

package main

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CaymanFreeman/Cairn/backend"
	"github.com/CaymanFreeman/Cairn/gpucore"
	"github.com/CaymanFreeman/Cairn/window"
)

// version is set with -ldflags "-X main.version=...".
var version = ""

func newAdaptersCommand(c *cli) *cobra.Command {
	var backendName string
	cmd := &cobra.Command{
		Use:   "adapters",
		Short: "List the adapters a backend reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			name := c.cfg.Backend
			if backendName != "" {
				name = backendName
			}
			inst, err := backend.Open(name)
			if err != nil {
				return err
			}
			defer inst.Release()

			out := cmd.OutOrStdout()
			infos := inst.Enumerate()
			if len(infos) == 0 {
				fmt.Fprintln(out, "no adapters")
				return nil
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%s\t%v\t%v\t%s\n", info.Name, info.DeviceType, info.Backend, info.Driver)
			}

			modes, adapter, err := presentModes(inst)
			if err != nil {
				c.log.Debug("present modes unavailable", "err", err)
				return nil
			}
			fmt.Fprintf(out, "present modes (%s): %s\n", adapter, modes)
			return nil
		},
	}
	cmd.Flags().StringVar(&backendName, "backend", "", "backend name; overrides the config")
	return cmd
}

// presentModes binds a throwaway surface and reports the present modes the
// default adapter offers for it.
func presentModes(inst gpucore.Instance) (string, string, error) {
	win := window.NewHeadless(1, 1)
	s, err := inst.CreateSurface(win.Handle())
	if err != nil {
		return "", "", err
	}
	defer s.Release()

	a, err := inst.RequestAdapter(&gpucore.AdapterOptions{CompatibleSurface: s})
	if err != nil {
		return "", "", err
	}
	defer a.Release()

	caps := a.SurfaceCapabilities(s)
	if caps == nil {
		return "", "", fmt.Errorf("adapter %s cannot present to the surface", a.Info().Name)
	}
	names := make([]string, 0, len(caps.PresentModes))
	for _, m := range caps.PresentModes {
		names = append(names, fmt.Sprint(m))
	}
	return strings.Join(names, ", "), a.Info().Name, nil
}

func newBackendsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List registered backends, best first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			best := backend.DefaultName()
			for _, name := range backend.Available() {
				if name == best {
					fmt.Fprintln(cmd.OutOrStdout(), name, "(default)")
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the cairn version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildVersion())
			return nil
		},
	}
}

func buildVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "devel"
}

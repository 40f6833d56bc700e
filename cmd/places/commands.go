package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"places/internal/capture"
	"places/internal/config"
	"places/internal/device"
	"places/internal/permission"
	"places/internal/service"
	"places/pkg/geo"
)

func initCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the place database and image storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a := newApp(cfg)
			defer func() { err = errors.Join(err, a.Close()) }()
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "place store %s at %s\n", s.State(), cfg.DBPath)
			return nil
		},
	}
}

type addOptions struct {
	title  string
	photo  string
	locate bool
	lat    float64
	lng    float64
	near   string
}

func addCommand(cfg *config.Config) *cobra.Command {
	var opts addOptions
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Capture a new place",
		Long: `Capture a new place from a photo file and a location.

The location comes from the device (--locate), from --lat/--lng, from a
place name (--near) or, when none is given, from an interactive prompt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a := newApp(cfg)
			defer func() { err = errors.Join(err, a.Close()) }()
			return runAdd(cmd, a, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.title, "title", "", "title of the place")
	f.StringVar(&opts.photo, "photo", "", "photo file to use as the camera shot (empty cancels the shot)")
	f.BoolVar(&opts.locate, "locate", false, "use the device location")
	f.Float64Var(&opts.lat, "lat", 0, "latitude picked on the map")
	f.Float64Var(&opts.lng, "lng", 0, "longitude picked on the map")
	f.StringVar(&opts.near, "near", "", "pick the location by searching for a place name")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	cmd.MarkFlagsMutuallyExclusive("locate", "lat", "near")
	cmd.MarkFlagsMutuallyExclusive("locate", "lng", "near")
	return cmd
}

func runAdd(cmd *cobra.Command, a *app, opts addOptions) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	places, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	positioner, err := a.positioner()
	if err != nil {
		return err
	}
	shots, err := os.MkdirTemp("", "places-capture-")
	if err != nil {
		return fmt.Errorf("failed to create capture dir: %w", err)
	}
	defer os.RemoveAll(shots)

	console := device.NewConsole(cmd.InOrStdin(), out)
	session := service.NewCaptureSession(service.Deps{
		Gate:     permission.NewGate(a.permissions(console), console, a.log),
		Camera:   capture.NewCamera(device.NewFileCamera(opts.photo, shots, a.log)),
		Locator:  capture.NewLocator(positioner),
		Picker:   capture.NewMapPicker(a.navigator(cmd, console, opts)),
		Resolver: a.resolver(),
		Store:    places,
		Logger:   a.log,
	})

	if err := session.SetTitle(opts.title); err != nil {
		return err
	}
	took, err := session.TakeImage(ctx)
	if err != nil && !errors.Is(err, permission.ErrDenied) {
		return err
	}
	if !took {
		fmt.Fprintln(out, "No picture taken.")
	}

	if opts.locate {
		_, err = session.LocateUser(ctx)
	} else {
		_, err = session.PickOnMap(ctx)
	}
	switch {
	case errors.Is(err, capture.ErrLocationUnavailable):
		fmt.Fprintln(out, "Could not fetch location. Please try again later or pick a location on the map.")
	case errors.Is(err, capture.ErrCancelled), errors.Is(err, permission.ErrDenied):
	case err != nil:
		return err
	}
	if url := session.Preview(); url != "" {
		fmt.Fprintf(out, "Map preview: %s\n", url)
	}

	p, err := session.Save(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved %q as %s\n", p.Title, p.ID)
	printPlace(out, service.PlaceView{Place: p})
	return nil
}

// navigator chooses what "pick on map" means for this invocation.
func (a *app) navigator(cmd *cobra.Command, console *device.Console, opts addOptions) capture.NavigateFunc {
	switch {
	case cmd.Flags().Changed("lat"):
		picked := geo.Coordinate{Lat: opts.lat, Lng: opts.lng}
		return func(context.Context) (geo.Coordinate, error) { return picked, nil }
	case opts.near != "":
		search := a.nominatim()
		return func(ctx context.Context) (geo.Coordinate, error) {
			place, err := search.Search(ctx, opts.near)
			if err != nil {
				return geo.Coordinate{}, err
			}
			return place.Coordinate()
		}
	}
	return device.NewPromptNavigator(console, a.nominatim()).Navigate
}

func listCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved places in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
			a := newApp(cfg)
			defer func() { err = errors.Join(err, a.Close()) }()
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			views, err := service.NewPlaces(s, a.resolver()).List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(views) == 0 {
				fmt.Fprintln(out, "No places added yet.")
				return nil
			}
			for _, v := range views {
				fmt.Fprintf(out, "%s  %s  (%s)\n", v.ID, v.Title, v.Location)
			}
			return nil
		},
	}
}

func showCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			a := newApp(cfg)
			defer func() { err = errors.Join(err, a.Close()) }()
			s, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			v, err := service.NewPlaces(s, a.resolver()).Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printPlace(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

func previewCommand(cfg *config.Config) *cobra.Command {
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the map preview URL and address of a coordinate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := geo.Coordinate{Lat: lat, Lng: lng}
			if err := c.Validate(); err != nil {
				return err
			}
			r := newApp(cfg).resolver()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, r.PreviewURL(c))
			if addr := r.ReverseGeocode(cmd.Context(), c); addr != "" {
				fmt.Fprintln(out, addr)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&lng, "lng", 0, "longitude")
	cmd.MarkFlagsRequiredTogether("lat", "lng")
	_ = cmd.MarkFlagRequired("lat")
	return cmd
}

func printPlace(out io.Writer, v service.PlaceView) {
	fmt.Fprintf(out, "Title:    %s\n", v.Title)
	fmt.Fprintf(out, "Location: %s\n", v.Location)
	if v.Address != "" {
		fmt.Fprintf(out, "Address:  %s\n", v.Address)
	}
	fmt.Fprintf(out, "Image:    %s\n", v.ImageURI)
	if v.PreviewURL != "" {
		fmt.Fprintf(out, "Preview:  %s\n", v.PreviewURL)
	}
}

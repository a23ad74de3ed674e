/*
Copyright © 2019 the ESL authors.
This file is part of ESL.

ESL is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

ESL is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with ESL.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package eslutil contains the command-line interface for ESL.
package eslutil

import (
	"context"
	"fmt"

	"github.com/gesla/esl"
	"github.com/lnashier/viper"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to ESL.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "verbose",
			usage: `
              verbose specifies whether to log progress messages.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DataRoot",
			usage: `
              DataRoot is the directory, or blob storage URL, that the
              data source directories in the layout are relative to.
              It can contain environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{codecCmd.Flags(), wavesCmd.Flags(), era5Cmd.Flags(), cmip6Cmd.Flags()},
		},
		{
			name: "Layout",
			usage: `
              Layout is the path to a TOML file specifying where each data
              source lives under DataRoot. Fields left out of the file keep
              their default values. If empty, the default layout is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{codecCmd.Flags(), wavesCmd.Flags(), era5Cmd.Flags(), cmip6Cmd.Flags()},
		},
		{
			name: "SkipMalformed",
			usage: `
              SkipMalformed specifies whether NetCDF files whose names do not
              follow the <source>_<kind>-<variable>_<rest>.nc convention are
              skipped with a warning. If false, they cause an error.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{groupsCmd.Flags(), loadCmd.Flags(), wavesCmd.Flags()},
		},
		{
			name: "BoundingBox",
			usage: `
              BoundingBox limits stations to a region, given as the
              minimum longitude, maximum longitude, minimum latitude and
              maximum latitude in degrees, for example "-15,15,48,65".
              If empty, all stations are kept.`,
			defaultVal: []string{},
			flagsets:   []*pflag.FlagSet{cmip6Cmd.Flags(), plotCmd.Flags()},
		},
		{
			name: "dim",
			usage: `
              dim is the dimension files are concatenated along.`,
			defaultVal: "time",
			flagsets:   []*pflag.FlagSet{flatCmd.Flags()},
		},
		{
			name: "recursive",
			usage: `
              recursive specifies whether files in subdirectories are
              included.`,
			shorthand:  "r",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{flatCmd.Flags()},
		},
		{
			name: "save",
			usage: `
              save specifies where to write the assembled data as NetCDF.
              For commands that produce one dataset per variable, it is a
              directory that receives one <variable>.nc file each.
              If empty, the data are only summarized.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{loadCmd.Flags(), flatCmd.Flags(), wavesCmd.Flags(), era5Cmd.Flags(), cmip6Cmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the name of the variable to map.`,
			defaultVal: "tide",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Time",
			usage: `
              Time is the time to map the variable at, for example
              "2020-01-01T06:00:00Z". It is ignored for variables
              without a time dimension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "MapType",
			usage: `
              MapType is the kind of map to draw. "station" maps tide model
              output located by station_x_coordinate and station_y_coordinate,
              fit to the stations or limited to BoundingBox. "tide" maps
              tide at stations located by longitude and latitude with
              Coastlines drawn as land.`,
			defaultVal: "station",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "Coastlines",
			usage: `
              Coastlines is the path to a shapefile of coastline or land
              geometry to draw on maps. If empty, none is drawn.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to write the map PNG image to.`,
			shorthand:  "o",
			defaultVal: "map.png",
			flagsets:   []*pflag.FlagSet{plotCmd.Flags()},
		},
	}

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			default:
				panic("invalid argument type")
			}
		}
	}
	Cfg = newConfig()
}

// newConfig returns a configuration bound to the command-line flags
// and to environment variables.
func newConfig() *viper.Viper {
	cfg := viper.New()

	// Set the prefix for configuration environment variables.
	cfg.SetEnvPrefix("ESL")
	cfg.AutomaticEnv()

	for _, option := range options {
		cfg.BindPFlag(option.name, option.flagsets[0].Lookup(option.name))
	}
	return cfg
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(scanCmd)
	Root.AddCommand(groupsCmd)
	Root.AddCommand(loadCmd)
	Root.AddCommand(flatCmd)
	Root.AddCommand(codecCmd)
	Root.AddCommand(wavesCmd)
	Root.AddCommand(era5Cmd)
	Root.AddCommand(cmip6Cmd)
	Root.AddCommand(plotCmd)
}

// setConfig finds and reads in the configuration file, if there is one,
// and sets up logging.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("esl: problem reading configuration file: %v", err)
		}
	}
	setLogging(Cfg.GetBool("verbose"))
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "esl",
	Short: "Assemble and map extreme sea level datasets.",
	Long: `esl finds, combines and maps the NetCDF datasets used to study
extreme sea levels: tide model station output, ERA5 wave and hourly
reanalysis fields, and CMIP6 tidal datums.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'ESL_var' where 'var' is the
name of the variable to be set. Paths may contain environment variables.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ESL.",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "ESL v%s\n", esl.Version)
	},
	DisableAutoGenTag: true,
}

var scanCmd = &cobra.Command{
	Use:   "scan DIR",
	Short: "List NetCDF files",
	Long: `scan lists the NetCDF (.nc) files anywhere under DIR, which may be
a local directory or a blob storage URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return esl.ScanFiles(context.Background(), expand(args[0]), esl.NetCDFExt, func(p string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
			return err
		})
	},
	DisableAutoGenTag: true,
}

var groupsCmd = &cobra.Command{
	Use:   "groups DIR",
	Short: "Group NetCDF files by variable",
	Long: `groups lists the NetCDF files under DIR grouped by the variable
encoded in their names, following the convention
<source>_<kind>-<variable>_<rest>.nc.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, false)
		if err != nil {
			return err
		}
		g, err := l.FindVariableFiles(context.Background(), expand(args[0]))
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		for _, v := range g.Variables() {
			fmt.Fprintf(w, "%s (%d files)\n", v, len(g[v]))
			for _, f := range g[v] {
				fmt.Fprintf(w, "\t%s\n", f)
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var loadCmd = &cobra.Command{
	Use:   "load DIR",
	Short: "Combine NetCDF files by variable",
	Long: `load groups the NetCDF files under DIR by the variable encoded in
their names and combines each group into one dataset, ordered by the
coordinate that differs between files.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, false)
		if err != nil {
			return err
		}
		ds, err := l.LoadByVariable(context.Background(), expand(args[0]))
		if err != nil {
			return err
		}
		return outputByVariable(cmd, ds, expand(Cfg.GetString("save")))
	},
	DisableAutoGenTag: true,
}

var flatCmd = &cobra.Command{
	Use:   "flat DIR",
	Short: "Concatenate the NetCDF files in a directory",
	Long: `flat concatenates the NetCDF files directly within DIR along the
dimension given by --dim, in file name order. With --recursive, files
in subdirectories are included in traversal order.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, false)
		if err != nil {
			return err
		}
		open := l.OpenFlat
		if Cfg.GetBool("recursive") {
			open = l.OpenNested
		}
		d, err := open(context.Background(), expand(args[0]), Cfg.GetString("dim"))
		if err != nil {
			return err
		}
		return output(cmd, d, expand(Cfg.GetString("save")))
	},
	DisableAutoGenTag: true,
}

var codecCmd = &cobra.Command{
	Use:   "codec",
	Short: "Summarize the CODEC tide model files",
	Long: `codec opens each CODEC tide model file in the layout's CODEC
directory and summarizes it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, true)
		if err != nil {
			return err
		}
		ds, err := l.CODECDatasets(context.Background(), expand(Cfg.GetString("DataRoot")))
		if err != nil {
			return err
		}
		for i, d := range ds {
			fmt.Fprintf(cmd.OutOrStdout(), "dataset %d\n%s", i, d)
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var wavesCmd = &cobra.Command{
	Use:   "waves",
	Short: "Combine the ERA5 wave files by variable",
	Long: `waves combines the ERA5 wave files in the layout's Waves directory
into one dataset per wave variable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, true)
		if err != nil {
			return err
		}
		ds, err := l.WaveDatasets(context.Background(), expand(Cfg.GetString("DataRoot")))
		if err != nil {
			return err
		}
		return outputByVariable(cmd, ds, expand(Cfg.GetString("save")))
	},
	DisableAutoGenTag: true,
}

var era5Cmd = &cobra.Command{
	Use:   "era5",
	Short: "Concatenate the ERA5 hourly files",
	Long: `era5 concatenates the files in the layout's ERA5Hourly directory
along time in file name order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, true)
		if err != nil {
			return err
		}
		d, err := l.ERA5Datasets(context.Background(), expand(Cfg.GetString("DataRoot")))
		if err != nil {
			return err
		}
		return output(cmd, d, expand(Cfg.GetString("save")))
	},
	DisableAutoGenTag: true,
}

var cmip6Cmd = &cobra.Command{
	Use:   "cmip6",
	Short: "Combine the CMIP6 tidal datum files",
	Long: `cmip6 combines the six CMIP6 tidal datum files (HAT, LAT, MHHW, MLLW,
MSL and TR by default) into one dataset along the station dimension,
keeping only stations within --BoundingBox if it is given. Station
coordinates are renamed to longitude and latitude.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		box, err := boundingBox(Cfg)
		if err != nil {
			return err
		}
		l, err := newLoader(Cfg, true)
		if err != nil {
			return err
		}
		d, err := l.CMIP6Datasets(context.Background(), expand(Cfg.GetString("DataRoot")), box)
		if err != nil {
			return err
		}
		return output(cmd, d, expand(Cfg.GetString("save")))
	},
	DisableAutoGenTag: true,
}

var plotCmd = &cobra.Command{
	Use:   "plot FILE|DIR",
	Short: "Map a station variable",
	Long: `plot draws a map of a variable at the stations in the NetCDF FILE
and writes it as a PNG image to OutputFile. If a directory DIR is given
instead, the NetCDF files directly inside it are concatenated along
time first. See the MapType option for the kinds of map available.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := newLoader(Cfg, false)
		if err != nil {
			return err
		}
		return Plot(l, expand(args[0]), Cfg)
	},
	DisableAutoGenTag: true,
}

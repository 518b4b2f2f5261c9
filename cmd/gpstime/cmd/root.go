package cmd

import (
	"bytes"
	"io/ioutil"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/astrotime/gpstime/internal/config"
	"github.com/astrotime/gpstime/internal/leapdata"
)

const defaultFormat = "2006-01-02 15:04:05.000000 MST"

var (
	cfgFile string
	version string

	flagLocal  bool
	flagUTC    bool
	flagGPS    bool
	flagISO    bool
	flagFormat string
)

var rootCmd = &cobra.Command{
	Use:   "gpstime [flags] [TIME ...]",
	Short: "GPS time conversion",
	Long: `gpstime converts between GPS and UNIX/UTC time.

Print local, UTC and GPS time for the specified time string, or for the
current time if none is given. Numeric time strings are interpreted as
GPS times. Leap second data is resolved from local caches and refreshed
from the IETF bulletin when expired.`,
	Args: cobra.ArbitraryArgs,
	RunE: run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (optional)")
	rootCmd.PersistentFlags().Int("log-level", 4, "debug=5, info=4, error=2, fatal=1, panic=0")
	viper.BindPFlag("general.log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.Flags().BoolVarP(&flagLocal, "local", "l", false, "print only local time")
	rootCmd.Flags().BoolVarP(&flagUTC, "utc", "u", false, "print only UTC time")
	rootCmd.Flags().BoolVarP(&flagGPS, "gps", "g", false, "print only GPS time")
	rootCmd.MarkFlagsMutuallyExclusive("local", "utc", "gps")

	rootCmd.Flags().BoolVarP(&flagISO, "iso", "i", false, "use ISO time format")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", defaultFormat, "time format (Go reference layout)")
	rootCmd.MarkFlagsMutuallyExclusive("iso", "format")

	// default values
	viper.SetDefault("leap_data.url", leapdata.DefaultURL)
	viper.SetDefault("leap_data.cache_file", leapdata.DefaultCacheFile())
	viper.SetDefault("leap_data.system_files", leapdata.DefaultSystemFiles)
	viper.SetDefault("leap_data.update", config.UpdateAuto)
	viper.SetDefault("leap_data.request_timeout", 30*time.Second)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(updateCmd)
}

// Execute executes the root command.
func Execute(v string) {
	version = v

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func initConfig() {
	config.Version = version

	if cfgFile != "" {
		b, err := ioutil.ReadFile(cfgFile)
		if err != nil {
			log.WithError(err).WithField("config", cfgFile).Fatal("error loading config file")
		}
		viper.SetConfigType("toml")
		if err := viper.ReadConfig(bytes.NewBuffer(b)); err != nil {
			log.WithError(err).WithField("config", cfgFile).Fatal("error loading config file")
		}
	} else {
		viper.SetConfigName("gpstime")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.config/gpstime")
		viper.AddConfigPath("/etc/gpstime")
		if err := viper.ReadInConfig(); err != nil {
			switch err.(type) {
			case viper.ConfigFileNotFoundError:
				// no configuration file is the common case
			default:
				log.WithError(err).Fatal("read configuration file error")
			}
		}
	}

	viperBindEnvs(config.C)

	viperHooks := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)

	if err := viper.Unmarshal(&config.C, viper.DecodeHook(viperHooks)); err != nil {
		log.WithError(err).Fatal("unmarshal config error")
	}
}

func viperBindEnvs(iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			tv = strings.ToLower(t.Name)
		}
		if tv == "-" {
			continue
		}

		switch v.Kind() {
		case reflect.Struct:
			viperBindEnvs(v.Interface(), append(parts, tv)...)
		default:
			// Bash doesn't allow env variable names with a dot so
			// bind the double underscore version.
			keyDot := strings.Join(append(parts, tv), ".")
			keyUnderscore := strings.Join(append(parts, tv), "__")
			viper.BindEnv(keyDot, strings.ToUpper(keyUnderscore))
		}
	}
}

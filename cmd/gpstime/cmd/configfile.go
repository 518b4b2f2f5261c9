package cmd

import (
	"os"
	"text/template"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/astrotime/gpstime/internal/config"
)

const configTemplate = `[general]
# Log level
#
# debug=5, info=4, warning=3, error=2, fatal=1, panic=0
log_level={{ .General.LogLevel }}


# Leap second data settings.
[leap_data]
# Explicit leap second table file.
#
# When set, this file is tried before the cache and system locations.
file="{{ .LeapData.File }}"

# Bulletin URL.
#
# Location of the published IETF leap-seconds.list document used for
# network updates.
url="{{ .LeapData.URL }}"

# User cache file.
#
# Network updates are written to this location. It is also the second
# resolution candidate, after the explicit file above.
cache_file="{{ .LeapData.CacheFile }}"

# System files.
#
# Read-only locations tried after the user cache file. Both the IETF
# leap-seconds.list and the tzdata leapseconds formats are supported.
system_files=[{{ range $i, $f := .LeapData.SystemFiles }}{{ if $i }}, {{ end }}"{{ $f }}"{{ end }}]

# Update policy.
#
# auto   update the cache from the IETF when the resolved data is expired
# force  always update the cache before converting
# never  never perform network updates
update="{{ .LeapData.Update }}"

# Request timeout.
#
# Bounded connect/read timeout for bulletin downloads.
request_timeout="{{ .LeapData.RequestTimeout }}"
`

var configCmd = &cobra.Command{
	Use:   "configfile",
	Short: "Print the gpstime configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		t := template.Must(template.New("config").Parse(configTemplate))
		err := t.Execute(os.Stdout, &config.C)
		if err != nil {
			return errors.Wrap(err, "execute config template error")
		}
		return nil
	},
}

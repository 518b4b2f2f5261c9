package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/astrotime/gpstime/internal/leapdata"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update the cached leap second data from the IETF",
	Long: `Update downloads the leap second bulletin from the IETF into the user
cache file, regardless of the expiry state of the currently resolved
data. It fails when the data is still expired afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks := []func() error{
			setLogLevel,
			setupLeapData,
		}
		for _, t := range tasks {
			if err := t(); err != nil {
				log.Fatal(err)
			}
		}

		table, degraded, err := leapdata.Refresh(context.Background(), true)
		if err != nil {
			return errors.Wrap(err, "refresh leap second data error")
		}
		if degraded || table.Expired(time.Now()) {
			return errors.New("leap second data is expired and could not be updated")
		}

		log.WithFields(log.Fields{
			"source":  table.Source,
			"expires": table.Expires,
			"events":  len(table.Events),
		}).Info("leap second data updated")

		return nil
	},
}

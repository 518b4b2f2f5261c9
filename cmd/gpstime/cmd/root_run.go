package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/astrotime/gpstime/internal/config"
	"github.com/astrotime/gpstime/internal/gpstime"
	"github.com/astrotime/gpstime/internal/leapdata"
)

func run(cmd *cobra.Command, args []string) error {
	tasks := []func() error{
		setLogLevel,
		printStartMessage,
		setupLeapData,
		refreshLeapData,
	}

	for _, t := range tasks {
		if err := t(); err != nil {
			log.Fatal(err)
		}
	}

	gt, err := gpstime.Parse(strings.Join(args, " "), leapdata.Get())
	if err != nil {
		log.Fatal(err)
	}

	format := flagFormat
	if flagISO {
		format = gpstime.ISOFormat
	}

	switch {
	case flagGPS:
		fmt.Printf("%.6f\n", gt.GPS())
	case flagLocal:
		fmt.Println(gt.In(time.Local).Format(format))
	case flagUTC:
		fmt.Println(gt.In(time.UTC).Format(format))
	default:
		lt := gt.In(time.Local)
		fmt.Printf("%s: %s\n", lt.Format("MST"), lt.Format(format))
		fmt.Printf("UTC: %s\n", gt.In(time.UTC).Format(format))
		fmt.Printf("GPS: %.6f\n", gt.GPS())
	}

	return nil
}

func setLogLevel() error {
	log.SetLevel(log.Level(uint8(config.C.General.LogLevel)))
	return nil
}

func printStartMessage() error {
	log.WithFields(log.Fields{
		"version": version,
	}).Debug("starting gpstime")
	return nil
}

func setupLeapData() error {
	if err := leapdata.Setup(config.C); err != nil {
		return errors.Wrap(err, "setup leap second data error")
	}
	return nil
}

func refreshLeapData() error {
	table := leapdata.Get()

	switch config.C.LeapData.Update {
	case config.UpdateNever:
		return nil
	case config.UpdateAuto, "":
		if !table.Expired(time.Now()) {
			return nil
		}
	case config.UpdateForce:
		// always refresh
	default:
		return fmt.Errorf("unknown leap_data update policy: %q", config.C.LeapData.Update)
	}

	_, degraded, err := leapdata.Refresh(context.Background(), config.C.LeapData.Update == config.UpdateForce)
	if err != nil {
		return errors.Wrap(err, "refresh leap second data error")
	}
	if degraded {
		log.Warning("leap second data is expired and could not be updated")
	}

	return nil
}

// README: One-shot CLI; ranks a CSV pool against one of its shipments and prints the matches.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"cargoshare/internal/config"
	"cargoshare/internal/export"
	"cargoshare/internal/logger"
	"cargoshare/internal/modules/matching"
	"cargoshare/internal/modules/shipment"
	"cargoshare/internal/types"
)

func main() {
	csvPath := flag.String("csv", "cargo_sharing_dataset.csv", "shipment dataset")
	id := flag.String("id", "", "shipment to match (defaults to the first row)")
	asID := flag.String("as", "NEW001", "id given to the query so the source row stays a candidate; empty keeps the original id")
	units := flag.Float64("units", 0, "override the query's units")
	n := flag.Int("n", 0, "number of recommendations (0 uses MATCH_NUM_RECOMMENDATIONS)")
	destKm := flag.Float64("dest-km", 0, "destination threshold in km (0 uses MATCH_DEST_THRESHOLD_KM)")
	hours := flag.Float64("hours", -1, "posting time window in hours (negative uses MATCH_TIME_THRESHOLD_HOURS)")
	xlsx := flag.String("xlsx", "", "also write the results to this workbook")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Fatal().Err(err).Msg("load config")
	}
	log := logger.New("development").Level(zerolog.WarnLevel)

	ctx := context.Background()
	shipments := shipment.NewService(nil, shipment.NewPool(), nil, log)
	f, err := os.Open(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("open dataset")
	}
	_, err = shipments.LoadCSV(ctx, f)
	f.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("read dataset")
	}

	q, err := pickQuery(ctx, shipments, types.ID(*id))
	if err != nil {
		log.Fatal().Err(err).Msg("select query shipment")
	}
	if *asID != "" {
		q.ID = types.ID(*asID)
	}
	if *units > 0 {
		q.Units = *units
	}

	cmd := matching.RecommendCommand{Query: q}
	if *n > 0 {
		cmd.N = n
	}
	if *destKm > 0 {
		cmd.DestThresholdKm = destKm
	}
	if *hours >= 0 {
		cmd.TimeThresholdHours = hours
	}

	svc := matching.NewService(shipments, cfg.Matching, nil, log)
	rec, err := svc.Recommend(ctx, cmd)
	if err != nil {
		log.Fatal().Err(err).Msg("recommend")
	}
	printRecommendations(os.Stdout, q, rec)

	if *xlsx != "" {
		data, err := export.Workbook(q, rec.Results, time.Now())
		if err != nil {
			log.Fatal().Err(err).Msg("build workbook")
		}
		if err := os.WriteFile(*xlsx, data, 0o644); err != nil {
			log.Fatal().Err(err).Msg("write workbook")
		}
	}
}

func pickQuery(ctx context.Context, shipments *shipment.Service, id types.ID) (shipment.Shipment, error) {
	if id != "" {
		return shipments.Get(ctx, id)
	}
	pool := shipments.Snapshot()
	if len(pool) == 0 {
		return shipment.Shipment{}, shipment.ErrNotFound
	}
	return pool[0], nil
}

func printRecommendations(w io.Writer, q shipment.Shipment, rec matching.Recommendation) {
	fmt.Fprintf(w, "Top recommendations for shipment %s (%s, %.0f units, %s to %s):\n",
		q.ID, q.GoodsType, q.Units, q.Source, q.Destination)
	if len(rec.Results) == 0 {
		fmt.Fprintln(w, "  no compatible shipments found")
		return
	}
	for i, r := range rec.Results {
		line := fmt.Sprintf("%d. %s - %s - %s to %s - Score: %.2f/100", i+1, r.Company, r.TruckType, r.Source, r.Destination, r.Score)
		if r.CarbonSavingsPercent != nil {
			line += fmt.Sprintf(" - Carbon reduction: %.0f%%", *r.CarbonSavingsPercent)
		}
		if r.ScheduledDelivery != nil {
			line += " - Delivery: " + r.ScheduledDelivery.Format("2006-01-02 15:04")
		}
		if r.ExceedsThreshold {
			line += fmt.Sprintf(" (NOTE: Distance of %.1f km exceeds threshold)", r.Distance)
		}
		fmt.Fprintln(w, line)
	}
}

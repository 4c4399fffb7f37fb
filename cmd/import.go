package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairdistricts/mapmetrics/internal/model"
	"github.com/fairdistricts/mapmetrics/internal/shapefile"
	"github.com/fairdistricts/mapmetrics/internal/store"
)

var (
	importState         string
	importDir           string
	importShapefile     string
	importDistrictField string
)

// datasetWriter is the write side shared by the sqlite and postgres adapters.
type datasetWriter interface {
	store.Store
	PutPopulation(ctx context.Context, state string, records []model.DistrictPopulation) error
	PutElections(ctx context.Context, state string, records []model.DistrictVotes) error
	PutShapes(ctx context.Context, state string, shapes []model.DistrictShape) error
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Load a state's district datasets into the configured database",
	Long:  "Reads population, election, and geometry files from the dataset directory (and optionally a district shapefile) and writes them to the sqlite or postgres store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := zap.L().With(zap.String("component", "import"), zap.String("state", importState))

		st, closeStore, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		writer, ok := st.(datasetWriter)
		if !ok {
			return eris.Errorf("import: data driver %q is not writable; use sqlite or postgres", cfg.Data.Driver)
		}

		dir := importDir
		if dir == "" {
			dir = cfg.Data.Dir
		}
		src := store.NewFile(dir)

		pop, err := src.PopulationRecords(ctx, importState)
		if err != nil {
			return err
		}
		if len(pop) > 0 {
			if err := writer.PutPopulation(ctx, importState, pop); err != nil {
				return err
			}
			log.Info("population dataset imported", zap.Int("districts", len(pop)))
		}

		votes, err := src.ElectionRecords(ctx, importState)
		if err != nil {
			return err
		}
		if len(votes) > 0 {
			if err := writer.PutElections(ctx, importState, votes); err != nil {
				return err
			}
			log.Info("election dataset imported", zap.Int("districts", len(votes)))
		}

		var shapes []model.DistrictShape
		if importShapefile != "" {
			shapes, err = shapefile.Districts(importShapefile, importDistrictField)
			if err != nil {
				return err
			}
		} else if set, err := src.Geometry(ctx, importState); err == nil && set != nil {
			shapes = set.Shapes
		}
		if len(shapes) > 0 {
			if err := writer.PutShapes(ctx, importState, shapes); err != nil {
				return err
			}
			log.Info("geometry dataset imported", zap.Int("districts", len(shapes)))
		}

		if len(pop) == 0 && len(votes) == 0 && len(shapes) == 0 {
			log.Warn("no datasets found to import", zap.String("dir", dir))
		}

		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importState, "state", "", "state code to import (required)")
	importCmd.Flags().StringVar(&importDir, "dir", "", "dataset directory (default from config)")
	importCmd.Flags().StringVar(&importShapefile, "shapefile", "", "district shapefile to load instead of districts.geojson")
	importCmd.Flags().StringVar(&importDistrictField, "district-field", "DISTRICT", "shapefile attribute holding the district id")
	_ = importCmd.MarkFlagRequired("state")
	rootCmd.AddCommand(importCmd)
}

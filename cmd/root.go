package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/s3du/output"
	"github.com/yourusername/s3du/region"
	"github.com/yourusername/s3du/sizer"
	"github.com/yourusername/s3du/types"
)

// sizingConcurrency bounds the per-bucket fan-out. Each bucket's own
// pagination stays strictly sequential, cursors can't be parallelized.
const sizingConcurrency = 4

var (
	bucketName     string
	endpoint       string
	mode           string
	objectVersions string
	profile        string
	regionName     string
	unit           string
	verbose        bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "s3du",
	Short: "Report the storage used by your S3 buckets",
	Long: `s3du reports how much storage your S3 buckets consume, like du for
object storage.

Sizes come from one of two sources:
  - cloudwatch: the daily BucketSizeBytes statistics that S3 publishes to
    CloudWatch for each bucket and storage class
  - s3: a direct listing of the bucket's objects, object versions, or
    in-progress multipart uploads, depending on --object-versions`,
	SilenceUsage: true,
	RunE:         runSizer,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().StringVarP(&bucketName, "bucket", "b", "", "Only report the size of the named bucket")
	rootCmd.Flags().StringVarP(&endpoint, "endpoint", "e", "", "Custom S3 endpoint URL (s3 mode only)")
	rootCmd.Flags().StringVarP(&mode, "mode", "m", "", "Use either cloudwatch or s3 to obtain bucket sizes")
	rootCmd.Flags().StringVarP(&objectVersions, "object-versions", "o", "", "Object versions to sum in s3 mode (all, all-with-multipart, current, multipart, non-current)")
	rootCmd.Flags().StringVarP(&profile, "profile", "p", "", "AWS profile name to use")
	rootCmd.Flags().StringVarP(&regionName, "region", "r", "", "AWS region to create the client in")
	rootCmd.Flags().StringVarP(&unit, "unit", "u", "", "Output unit (binary, bytes, decimal)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	// Flags win over S3DU_* environment variables, which win over the
	// defaults.
	viper.SetEnvPrefix("s3du")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	for _, key := range []string{"bucket", "endpoint", "mode", "object-versions", "profile", "unit"} {
		viper.BindEnv(key)
		viper.BindPFlag(key, rootCmd.Flags().Lookup(key))
	}

	viper.SetDefault("mode", string(types.ModeCloudWatch))
	viper.SetDefault("object-versions", string(types.VersionsCurrent))
	viper.SetDefault("unit", string(types.UnitBinary))
}

// buildConfig validates all configuration up front, before any network
// call is made.
func buildConfig() (*types.Config, error) {
	selectedMode, err := types.ParseMode(viper.GetString("mode"))
	if err != nil {
		return nil, err
	}

	versions, err := types.ParseObjectVersions(viper.GetString("object-versions"))
	if err != nil {
		return nil, err
	}

	sizeUnit, err := types.ParseSizeUnit(viper.GetString("unit"))
	if err != nil {
		return nil, err
	}

	resolved, err := region.Resolve(regionName, region.OSEnv{})
	if err != nil {
		return nil, err
	}

	if customEndpoint := viper.GetString("endpoint"); customEndpoint != "" {
		if selectedMode != types.ModeS3 {
			return nil, fmt.Errorf("--endpoint is only valid in s3 mode")
		}

		resolved = resolved.WithEndpoint(customEndpoint)
	}

	return &types.Config{
		BucketName:     viper.GetString("bucket"),
		Mode:           selectedMode,
		ObjectVersions: versions,
		Profile:        viper.GetString("profile"),
		Region:         resolved,
		Unit:           sizeUnit,
	}, nil
}

func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func runSizer(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	log.Debug().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region.Name()).
		Msg("creating sizing client")

	client, err := sizer.New(ctx, cfg)
	if err != nil {
		return err
	}

	buckets, err := client.Buckets(ctx)
	if err != nil {
		return fmt.Errorf("failed to discover buckets: %w", err)
	}

	if len(buckets) == 0 {
		fmt.Println("No buckets found.")
		return nil
	}

	// Size buckets concurrently. Each result lands in its own slot, so the
	// only coordination needed is the group wait.
	sizes := make([]uint64, len(buckets))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(sizingConcurrency)

	for i, bucket := range buckets {
		i, bucket := i, bucket
		group.Go(func() error {
			size, err := client.BucketSize(groupCtx, &bucket)
			if err != nil {
				return fmt.Errorf("failed to size bucket %s: %w", bucket.Name, err)
			}

			sizes[i] = size

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	writer := output.NewWriter(os.Stdout, cfg.Unit)

	var total types.SizeAccumulator

	for i, bucket := range buckets {
		writer.WriteBucketSize(bucket.Name, sizes[i])

		if err := total.AddUint64(sizes[i]); err != nil {
			return fmt.Errorf("failed to total bucket sizes: %w", err)
		}
	}

	writer.WriteTotal(total.Total())

	return nil
}

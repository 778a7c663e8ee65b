package split

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
)

// ErrConfig is returned for invalid or inconsistent configuration.
var ErrConfig = errors.New("invalid split configuration")

// Config holds the inputs and tunables of a Splitter.
type Config struct {
	// Generation mode inputs, aligned by index: spectra file, label file and
	// patient interval of each source.
	SpectralPaths    []string `yaml:"spectral_paths" envconfig:"SPECTRAL_PATHS" validate:"dive,required"`
	LabelPaths       []string `yaml:"label_paths" envconfig:"LABEL_PATHS" validate:"dive,required"`
	PatientIntervals []int    `yaml:"patient_intervals" envconfig:"PATIENT_INTERVALS" validate:"dive,gt=0"`

	// UsePreSplit selects pre-split mode, which reads the train/test paths
	// below instead of the generation mode inputs.
	UsePreSplit bool `yaml:"use_pre_split" envconfig:"USE_PRE_SPLIT"`

	// Pre-split mode inputs, aligned by index.
	TrainDataPaths  []string `yaml:"train_data_paths" envconfig:"TRAIN_DATA_PATHS" validate:"dive,required"`
	TrainLabelPaths []string `yaml:"train_label_paths" envconfig:"TRAIN_LABEL_PATHS" validate:"dive,required"`
	TestDataPaths   []string `yaml:"test_data_paths" envconfig:"TEST_DATA_PATHS" validate:"dive,required"`
	TestLabelPaths  []string `yaml:"test_label_paths" envconfig:"TEST_LABEL_PATHS" validate:"dive,required"`

	// Zero-valued tunables below select their defaults; see WithDefaults.

	// BatchSize is the number of examples per batch. Default 16.
	BatchSize int `yaml:"batch_size" envconfig:"BATCH_SIZE" validate:"gte=0"`

	// Seed seeds the generator shared by every random draw of the split.
	// Default 42; use SeedSet to request a literal zero seed.
	Seed    int64 `yaml:"seed" envconfig:"SEED"`
	SeedSet bool  `yaml:"-" ignored:"true"`

	// TrainFraction and ValidationFraction bound the patient ranges in
	// generation mode. Defaults 0.7 and 0.15; the test range takes the rest.
	// A zero fraction cannot be requested, since zero selects the default.
	TrainFraction      float64 `yaml:"train_fraction" envconfig:"TRAIN_FRACTION" validate:"gte=0,lte=1"`
	ValidationFraction float64 `yaml:"validation_fraction" envconfig:"VALIDATION_FRACTION" validate:"gte=0,lte=1"`

	// ValidationSize is the share of the pre-split train array moved to the
	// validation partition. Default 0.25.
	ValidationSize float64 `yaml:"validation_size" envconfig:"VALIDATION_SIZE" validate:"gte=0,lt=1"`

	// Workers is passed on to every Loader.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"gte=0"`

	Logger *slog.Logger `yaml:"-" ignored:"true" validate:"-"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
// Validate should see the defaulted config, since the defaults take part in
// the cross-field checks.
func (c Config) WithDefaults() Config {
	if c.BatchSize == 0 {
		c.BatchSize = 16
	}
	if c.Seed == 0 && !c.SeedSet {
		c.Seed = 42
	}
	if c.TrainFraction == 0 {
		c.TrainFraction = 0.7
	}
	if c.ValidationFraction == 0 {
		c.ValidationFraction = 0.15
	}
	if c.ValidationSize == 0 {
		c.ValidationSize = 0.25
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

var validate = validator.New()

// Validate checks field ranges and that the aligned lists of the selected
// mode are present and of equal length.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfig, err)
	}
	if c.TrainFraction+c.ValidationFraction > 1 {
		return fmt.Errorf("%w: train and validation fractions sum to %v", ErrConfig, c.TrainFraction+c.ValidationFraction)
	}

	if c.UsePreSplit {
		n := len(c.TrainDataPaths)
		if n == 0 {
			return fmt.Errorf("%w: pre-split mode requires train and test paths", ErrConfig)
		}
		if len(c.TrainLabelPaths) != n || len(c.TestDataPaths) != n || len(c.TestLabelPaths) != n {
			return fmt.Errorf("%w: pre-split path lists differ in length: train data %d, train labels %d, test data %d, test labels %d",
				ErrConfig, n, len(c.TrainLabelPaths), len(c.TestDataPaths), len(c.TestLabelPaths))
		}
		return nil
	}

	n := len(c.SpectralPaths)
	if n == 0 {
		return fmt.Errorf("%w: generation mode requires spectral, label and patient interval lists", ErrConfig)
	}
	if len(c.LabelPaths) != n || len(c.PatientIntervals) != n {
		return fmt.Errorf("%w: source lists differ in length: spectra %d, labels %d, patient intervals %d",
			ErrConfig, n, len(c.LabelPaths), len(c.PatientIntervals))
	}
	return nil
}

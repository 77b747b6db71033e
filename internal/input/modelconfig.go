package input

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ModelConfig carries the two acoustic-model parameters the analysis needs
// from the model's training YAML: the encoder's temporal subsampling rate
// and the feature frame shift.
type ModelConfig struct {
	Encoder struct {
		SubsamplingRate int `yaml:"subsampling_rate"`
	} `yaml:"encoder_conf"`
	Dataset struct {
		Fbank struct {
			FrameShift int `yaml:"frame_shift"`
		} `yaml:"fbank_conf"`
	} `yaml:"dataset_conf"`
}

// ReadModelConfig parses a model training config. Unknown keys are ignored,
// the file usually carries the full training recipe.
func ReadModelConfig(path string) (ModelConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ModelConfig{}, fmt.Errorf("failed to read model config: %w", err)
	}

	var cfg ModelConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return ModelConfig{}, fmt.Errorf("failed to parse model config: %w", err)
	}
	if cfg.Encoder.SubsamplingRate < 0 {
		return ModelConfig{}, fmt.Errorf("invalid subsampling rate: %d", cfg.Encoder.SubsamplingRate)
	}
	return cfg, nil
}
